package models

// Action names an operation guarded by the security policy.
type Action string

const (
	ActionDeleteAccount          Action = "delete_account"
	ActionChangePassword         Action = "change_password"
	ActionExportData             Action = "export_data"
	ActionChangeSecuritySettings Action = "change_security_settings"

	ActionAddPaymentMethod      Action = "add_payment_method"
	ActionDeleteTransaction     Action = "delete_transaction"
	ActionDeleteBudget          Action = "delete_budget"
	ActionChangePrivacySettings Action = "change_privacy_settings"

	ActionViewBalance      Action = "view_balance"
	ActionViewTransactions Action = "view_transactions"
	ActionViewBudgets      Action = "view_budgets"
	ActionAddTransaction   Action = "add_transaction"
	ActionEditTransaction  Action = "edit_transaction"
	ActionAddBudget        Action = "add_budget"
	ActionEditBudget       Action = "edit_budget"
)

var (
	HighSecurityActions = map[Action]struct{}{
		ActionDeleteAccount:          {},
		ActionChangePassword:         {},
		ActionExportData:             {},
		ActionChangeSecuritySettings: {},
	}
	MediumSecurityActions = map[Action]struct{}{
		ActionAddPaymentMethod:      {},
		ActionDeleteTransaction:     {},
		ActionDeleteBudget:          {},
		ActionChangePrivacySettings: {},
	}
	SensitiveActions = map[Action]struct{}{
		ActionViewBalance:      {},
		ActionViewTransactions: {},
		ActionViewBudgets:      {},
		ActionAddTransaction:   {},
		ActionEditTransaction:  {},
		ActionAddBudget:        {},
		ActionEditBudget:       {},
	}
)

// DataCategory names a kind of figure that can be masked on screen.
type DataCategory string

const (
	DataBalances     DataCategory = "balances"
	DataTransactions DataCategory = "transactions"
	DataBudgets      DataCategory = "budgets"
)
