package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSalt = "budgetkeeper-test-salt"

func TestTag_Deterministic(t *testing.T) {
	assert.Equal(t, Tag("abc", testSalt), Tag("abc", testSalt))
	assert.Len(t, Tag("abc", testSalt), 64)
	assert.NotEqual(t, Tag("abc", testSalt), Tag("abc", "other-salt"))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	data := `{"user_id":"u1","data":{"a::b":[1]}}`

	blob := Seal(data, testSalt)
	assert.True(t, strings.HasPrefix(blob, data+TagSeparator))

	got, ok := Open(blob, testSalt)
	assert.True(t, ok)
	assert.Equal(t, data, got)
}

func TestOpen_RejectsEverySingleCharMutation(t *testing.T) {
	data := "payload-123"
	blob := Seal(data, testSalt)

	for i := 0; i < len(blob); i++ {
		b := []byte(blob)
		if b[i] == 'x' {
			b[i] = 'y'
		} else {
			b[i] = 'x'
		}
		mutated := string(b)

		got, ok := Open(mutated, testSalt)
		assert.False(t, ok, "mutation at %d accepted", i)
		assert.Equal(t, mutated, got)
	}
}

func TestOpen_Unsealed(t *testing.T) {
	got, ok := Open(`{"plain":true}`, testSalt)
	assert.False(t, ok)
	assert.Equal(t, `{"plain":true}`, got)
}

func TestOpen_WrongSalt(t *testing.T) {
	blob := Seal("data", testSalt)
	got, ok := Open(blob, "another")
	assert.False(t, ok)
	assert.Equal(t, blob, got)
}
