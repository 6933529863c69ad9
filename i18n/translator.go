package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "attribute" or "association").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須属性が不足しています"
		case "invalid":
			return "ネストされたレコードが不正です"
		case "parse_error":
			return "解析エラー"
		case "association_unresolved":
			return "関連先を解決できません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required attribute missing"
		case "invalid":
			return "nested record is invalid"
		case "parse_error":
			return "parse error"
		case "association_unresolved":
			return "association target cannot be resolved"
		}
	}
	return code
}

var current Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in dictionary to the given language.
// Supported: "en" (default), "ja".
func SetLanguage(lang string) {
	current = dictTranslator{lang: lang}
}

// SetTranslator installs a custom Translator.
func SetTranslator(t Translator) {
	if t != nil {
		current = t
	}
}

// T returns the message for the given code via the current Translator.
func T(code string, data map[string]string) string {
	return current.Message(code, data)
}
