package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "width" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "解析エラー"
		case "missing_field":
			return "必須フィールドが不足しています"
		case "schema_error":
			return "スキーマが不正です"
		case "format_error":
			return "値の形式が不正です"
		case "length_violation":
			return "値が宣言された幅を超えています"
		case "unsupported_shape":
			return "サポートされていない構造です"
		case "invalid_state":
			return "不正な状態です"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "parse error"
		case "missing_field":
			return "required field missing"
		case "schema_error":
			return "invalid schema"
		case "format_error":
			return "invalid value"
		case "length_violation":
			return "value exceeds declared width"
		case "unsupported_shape":
			return "unsupported shape"
		case "invalid_state":
			return "invalid state"
		}
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
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
