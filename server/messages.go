package server

import "github.com/richinex/sociomind/model"

type messageID int

const (
	msgServer messageID = iota
	msgCredential
	msgBadRequest
)

var messages = map[messageID]map[model.Language]string{
	msgServer: {
		model.LanguageEnglish:    "Academic server error.",
		model.LanguageIndonesian: "Gagal memuat materi akademik.",
		model.LanguageArabic:     "خطأ في الخادم الأكاديمي.",
	},
	msgCredential: {
		model.LanguageEnglish:    "The API key was rejected or its quota is exhausted. Please select another key.",
		model.LanguageIndonesian: "Kunci API ditolak atau kuotanya habis. Silakan pilih kunci lain.",
		model.LanguageArabic:     "تم رفض مفتاح API أو نفدت حصته. يرجى اختيار مفتاح آخر.",
	},
	msgBadRequest: {
		model.LanguageEnglish:    "Invalid request.",
		model.LanguageIndonesian: "Permintaan tidak valid.",
		model.LanguageArabic:     "طلب غير صالح.",
	},
}

func localize(id messageID, lang model.Language) string {
	if msg, ok := messages[id][lang]; ok {
		return msg
	}
	return messages[id][model.DefaultLanguage]
}
