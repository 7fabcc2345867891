package gateway

import (
	"fmt"

	"github.com/richinex/sociomind/model"
)

// Fixtures serves hand-authored sociology payloads for offline mode and as
// the degradation target after a failure. Every method returns a fresh,
// shape-conformant value that depends only on the request topic and language.
type Fixtures struct{}

// Quiz returns two worked items on solidarity theory.
func (Fixtures) Quiz(model.ContentRequest) model.QuizBatch {
	return model.QuizBatch{
		{
			Question: "Dalam teori Ibnu Khaldun, apa yang menjadi pengikat utama solidaritas kelompok pada masyarakat nomaden?",
			Options: []string{
				"Asabiyyah (solidaritas kesukuan)",
				"Kontrak sosial tertulis",
				"Pembagian kerja yang kompleks",
				"Birokrasi negara modern",
			},
			CorrectAnswers: []int{0},
			IsMultiSelect:  false,
			Explanation:    "Ibnu Khaldun menyebut Asabiyyah sebagai ikatan solidaritas yang lahir dari kekerabatan dan pengalaman hidup bersama di padang pasir (Badawa). Ikatan ini paling kuat pada masyarakat nomaden dan melemah ketika kelompok menetap dalam kemewahan kota (Hadara).",
		},
		{
			Question: "Sebuah desa nelayan bergotong royong memperbaiki perahu setelah badai, sementara warga kota besar lebih bergantung pada jasa profesional. Pernyataan mana yang tepat menurut Durkheim dan Ibnu Khaldun?",
			Options: []string{
				"Desa nelayan mencerminkan solidaritas mekanik yang sejalan dengan Asabiyyah",
				"Warga kota mencerminkan solidaritas organik yang ditopang pembagian kerja",
				"Kedua masyarakat sama-sama tidak memiliki solidaritas",
				"Asabiyyah hanya dapat tumbuh di masyarakat industri",
			},
			CorrectAnswers: []int{0, 1},
			IsMultiSelect:  true,
			Explanation:    "Durkheim membedakan solidaritas mekanik yang berbasis kesamaan dari solidaritas organik yang berbasis saling ketergantungan. Gotong royong desa nelayan dekat dengan Asabiyyah Ibnu Khaldun, sedangkan kota besar bertumpu pada pembagian kerja yang kompleks.",
		},
	}
}

// CustomQuestion returns one worked question in the requested format.
func (Fixtures) CustomQuestion(req model.ContentRequest) model.CustomQuestion {
	topic := topicOr(req.Topic, "Solidaritas Sosial")
	switch req.Format {
	case model.FormatMultiChoice:
		return model.CustomQuestion{
			Type:    model.FormatMultiChoice,
			Content: fmt.Sprintf("Perhatikan fenomena berikut terkait %s: sebuah komunitas migran di kota membentuk arisan dan koperasi berbasis daerah asal. Manakah pernyataan yang tepat?", topic),
			Options: []string{
				"A. Komunitas tersebut mempertahankan Asabiyyah di lingkungan Hadara",
				"B. Ikatan daerah asal berfungsi sebagai modal sosial",
				"C. Komunitas tersebut telah sepenuhnya mengalami anomie",
				"D. Koperasi menunjukkan hilangnya solidaritas kelompok",
			},
			AnswerKeys:      []string{"A", "B"},
			DeepExplanation: "Pilihan A dan B benar. Menurut Ibnu Khaldun, Asabiyyah dapat bertahan di kota selama ikatan kekerabatan dirawat, dan dalam kerangka Bourdieu ikatan tersebut menjadi modal sosial. Anomie dan hilangnya solidaritas justru bertentangan dengan fenomena yang digambarkan.",
		}
	case model.FormatEssay:
		return model.CustomQuestion{
			Type:            model.FormatEssay,
			Content:         fmt.Sprintf("Jelaskan pengertian %s dan berikan satu contoh penerapannya dalam kehidupan masyarakat Indonesia!", topic),
			DeepExplanation: fmt.Sprintf("Jawaban yang baik mendefinisikan %s dengan merujuk pada tokoh sosiologi, lalu memberi contoh konkret seperti gotong royong atau musyawarah desa, serta menjelaskan fungsi sosialnya bagi keteraturan masyarakat.", topic),
		}
	case model.FormatAnalyticalEssay:
		return model.CustomQuestion{
			Type:            model.FormatAnalyticalEssay,
			Content:         fmt.Sprintf("Analisislah secara kritis bagaimana %s berubah ketika masyarakat beralih dari kehidupan pedesaan ke perkotaan. Bandingkan perspektif Durkheim dan Ibnu Khaldun!", topic),
			DeepExplanation: "Jawaban unggul menguraikan peralihan solidaritas mekanik ke organik menurut Durkheim, mengaitkannya dengan siklus Badawa ke Hadara dan melemahnya Asabiyyah menurut Ibnu Khaldun, lalu menilai keterbatasan kedua teori dalam menjelaskan masyarakat digital.",
		}
	default:
		return model.CustomQuestion{
			Type:    model.FormatSingleChoice,
			Content: fmt.Sprintf("Konsep apa yang paling tepat menjelaskan %s pada masyarakat nomaden menurut Ibnu Khaldun?", topic),
			Options: []string{
				"A. Asabiyyah",
				"B. Anomie",
				"C. Alienasi",
				"D. Rasionalisasi",
			},
			AnswerKeys:      []string{"A"},
			DeepExplanation: "Asabiyyah adalah solidaritas kelompok yang menurut Ibnu Khaldun menjadi kekuatan penggerak masyarakat nomaden. Anomie berasal dari Durkheim, alienasi dari Marx, dan rasionalisasi dari Weber.",
		}
	}
}

// Explanation returns a short markdown chapter for the topic.
func (Fixtures) Explanation(req model.ContentRequest) string {
	topic := topicOr(req.Topic, "Solidaritas Sosial")
	return fmt.Sprintf(`# %[1]s

**Mode Demo.** Materi ini adalah contoh statis karena kunci API belum dikonfigurasi.

## Perspektif Klasik
Émile Durkheim membedakan **solidaritas mekanik** dan **solidaritas organik**. Ibnu Khaldun, jauh sebelumnya, menjelaskan **Asabiyyah** sebagai ikatan kelompok yang menentukan naik turunnya peradaban (*Umran*).

## Latihan
Manakah konsep yang dikemukakan Ibnu Khaldun?
* A. Asabiyyah
* B. Anomie
* C. Verstehen
* D. Habitus
`, topic)
}

// Definition returns a short markdown definition for the term.
func (Fixtures) Definition(req model.ContentRequest) string {
	term := topicOr(req.Topic, "Asabiyyah")
	return fmt.Sprintf("**%s** (mode demo): istilah sosiologi yang akan dijelaskan secara lengkap setelah kunci API dikonfigurasi. Sebagai pembanding, *Asabiyyah* menurut Ibnu Khaldun adalah solidaritas kelompok yang menjadi dasar kekuatan sosial dan politik.", term)
}

// CaseStudy returns a worked urbanization case titled after the topic.
func (Fixtures) CaseStudy(req model.ContentRequest) model.CaseStudy {
	topic := topicOr(req.Topic, "Urbanisasi")
	return model.CaseStudy{
		Title:    "Studi Kasus Demo: " + topic,
		Scenario: "Sebuah desa di pinggiran kota berubah cepat menjadi kawasan industri. Pemuda desa bekerja di pabrik, tradisi gotong royong mulai ditinggalkan, dan pendatang baru membentuk komunitas sendiri. Para tetua khawatir ikatan sosial desa memudar.",
		AnalysisQuestions: []string{
			"Bagaimana perubahan solidaritas di desa tersebut dapat dijelaskan dengan konsep solidaritas mekanik dan organik Durkheim?",
			"Sejauh mana konsep Asabiyyah Ibnu Khaldun membantu memahami melemahnya ikatan warga asli?",
		},
		ProposedSolutions: []string{
			"Menghidupkan kembali forum musyawarah desa yang melibatkan warga asli dan pendatang.",
			"Membangun program kemitraan antara pabrik dan komunitas untuk kegiatan sosial bersama.",
		},
	}
}

// Analysis returns a worked analysis with two theory scores.
func (Fixtures) Analysis(model.ContentRequest) model.AnalysisResult {
	return model.AnalysisResult{
		Summary: "Data menunjukkan pergeseran dari ikatan komunal menuju hubungan yang lebih individual dan fungsional.",
		Scores: []model.Score{
			{Label: "Solidaritas Organik (Durkheim)", Value: 75, Category: "Teori Klasik"},
			{Label: "Asabiyyah (Ibnu Khaldun)", Value: 60, Category: "Sosiologi Islam"},
		},
		DetailedAnalysis: "Pembagian kerja yang makin kompleks memperkuat ketergantungan fungsional antarwarga, sesuai gagasan solidaritas organik. Namun ikatan kekerabatan dan asal daerah masih bertahan, sehingga Asabiyyah tetap relevan sebagai penjelas kohesi kelompok kecil di tengah masyarakat perkotaan.",
	}
}

// Narration returns the intro script in the request language without audio.
func (Fixtures) Narration(req model.ContentRequest) model.Narration {
	return model.Narration{Script: introScript(req.Language)}
}

func topicOr(topic, fallback string) string {
	if topic == "" {
		return fallback
	}
	return topic
}
