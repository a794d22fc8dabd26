package i18n

import (
	"fmt"
	"sync"
)

// Translator retrieves localized messages for failure codes.
// data carries the message parameters ("path", "expected", "actual", "value",
// "allowed", "key", "cause", "limit").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	d := func(k string) string { return data[k] }
	if t.lang == "ja" {
		switch code {
		case "invalid_type":
			return fmt.Sprintf("%s を期待しましたが、値 %s の型は {%s} です", d("expected"), d("value"), d("actual"))
		case "required":
			return fmt.Sprintf("%q は必須です (undefined/null は指定できません)", d("path"))
		case "unknown_key":
			return fmt.Sprintf("パス %q のフィールド %q はスキーマに定義されていません", d("path"), d("key"))
		case "invalid_enum":
			return fmt.Sprintf("値 %s は許可された値 [%s] に含まれていません", d("value"), d("allowed"))
		case "element_required":
			return "配列要素が少なくとも 1 つ必要です"
		}
	}
	switch code {
	case "invalid_type":
		return fmt.Sprintf("Expected %s but value %s is type {%s}", d("expected"), d("value"), d("actual"))
	case "required":
		return fmt.Sprintf("Schema violation, %q is required and cannot be undefined or null", d("path"))
	case "unknown_key":
		return fmt.Sprintf("The field %q in the path %q is not defined in the schema!", d("key"), d("path"))
	case "invalid_enum":
		return fmt.Sprintf("Expected one of [%s] but value %s is not in the allowed set", d("allowed"), d("value"))
	case "element_required":
		return "At least one array element is required by schema"
	case "transform":
		return fmt.Sprintf("Transform for %q failed: %s", d("path"), d("cause"))
	case "unresolved_ref":
		return fmt.Sprintf("Schema reference at %q does not resolve to a defined schema", d("path"))
	case "too_deep":
		return fmt.Sprintf("Maximum nesting depth %s exceeded at %q", d("limit"), d("path"))
	case "canceled":
		return fmt.Sprintf("Validation canceled at %q: %s", d("path"), d("cause"))
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Default returns the Translator currently installed for the process.
func Default() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// ForLanguage returns a dictionary Translator for lang without touching the
// process default.
func ForLanguage(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return Default().Message(code, data) }
