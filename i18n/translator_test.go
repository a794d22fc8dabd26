package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	data := map[string]string{"expected": "string", "value": "1", "actual": "number"}
	assert.Equal(t, "Expected string but value 1 is type {number}", T("invalid_type", data))

	SetLanguage("ja")
	defer SetLanguage("en")
	assert.NotEqual(t, "Expected string but value 1 is type {number}", T("invalid_type", data))
	// codes without a japanese entry fall back to english
	assert.Equal(t, "Transform for \"a\" failed: boom", T("transform", map[string]string{"path": "a", "cause": "boom"}))
}

func TestTranslator_UnknownCodeEchoes(t *testing.T) {
	assert.Equal(t, "no_such_code", ForLanguage("en").Message("no_such_code", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	assert.Equal(t, "X:required", T("required", nil))
	SetTranslator(nil)
	assert.Equal(t, "Schema violation, \"id\" is required and cannot be undefined or null",
		T("required", map[string]string{"path": "id"}))
}
