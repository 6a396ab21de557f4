package domain

// TranslationOutcome is the best-effort result of a translation call.
// Invariant: on Success == false, TranslatedText equals the original input.
type TranslationOutcome struct {
	Success        bool
	TranslatedText string
	SourceLanguage string
	TargetLanguage string
	ErrorDetail    string
}

func TranslationNoop(text, from, to string) TranslationOutcome {
	return TranslationOutcome{
		Success:        true,
		TranslatedText: text,
		SourceLanguage: from,
		TargetLanguage: to,
	}
}

func TranslationDegraded(text, from, to string, err error) TranslationOutcome {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return TranslationOutcome{
		Success:        false,
		TranslatedText: text,
		SourceLanguage: from,
		TargetLanguage: to,
		ErrorDetail:    detail,
	}
}
