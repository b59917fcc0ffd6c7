package services

import "strings"

const (
	LocaleEnglish = "en"
	LocaleKorean  = "ko"
	DefaultLocale = LocaleEnglish
)

var messageCatalog = map[string]map[ErrorKind]string{
	LocaleEnglish: {
		KindInvalidRequest:        "Please select both a CV file and at least one research interest.",
		KindExtractionFailed:      "We could not read text from the uploaded CV. Please upload a PDF, DOCX or TXT file.",
		KindAnalysisServiceFailed: "The CV analysis failed. Please try again in a moment.",
		KindTrendServiceFailed:    "Paper trends could not be loaded. Please try again in a moment.",
		KindFileTooLarge:          "The uploaded CV is too large.",
	},
	LocaleKorean: {
		KindInvalidRequest:        "CV 파일과 관심 분야를 모두 선택해주세요.",
		KindExtractionFailed:      "CV 파일에서 텍스트를 추출하지 못했습니다. PDF, DOCX 또는 TXT 파일을 업로드해주세요.",
		KindAnalysisServiceFailed: "CV 분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
		KindTrendServiceFailed:    "논문 트렌드를 불러오지 못했습니다. 잠시 후 다시 시도해주세요.",
		KindFileTooLarge:          "업로드한 CV 파일이 너무 큽니다.",
	},
}

const fallbackMessage = "An unexpected error occurred during analysis."

// Message returns the localized message for kind, falling back to English.
func Message(locale string, kind ErrorKind) string {
	if msgs, ok := messageCatalog[locale]; ok {
		if msg, ok := msgs[kind]; ok {
			return msg
		}
	}
	if msg, ok := messageCatalog[DefaultLocale][kind]; ok {
		return msg
	}
	return fallbackMessage
}

// ParseLocale picks a supported locale from an Accept-Language header.
func ParseLocale(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if tag == "" || tag == "*" {
			continue
		}
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := messageCatalog[base]; ok {
			return base
		}
	}
	return DefaultLocale
}

// RunKindCancelled is the failure kind of async runs stopped before they
// finished, either by the caller or by shutdown.
const RunKindCancelled = "CANCELLED"

var cancelledMessages = map[string]string{
	LocaleEnglish: "The analysis was cancelled.",
	LocaleKorean:  "분석이 취소되었습니다.",
}

func CancelledMessage(locale string) string {
	if msg, ok := cancelledMessages[locale]; ok {
		return msg
	}
	return cancelledMessages[DefaultLocale]
}
