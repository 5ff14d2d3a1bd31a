package compose

import "github.com/promptgram/promptgram/internal/domain"

// Placeholder is the token a template body must carry to receive the
// rendered message selection.
const Placeholder = "{{messages}}"

// DefaultTemplateID identifies the template preselected in the composer.
const DefaultTemplateID = "default"

// Templates is the built-in template set, in display order.
var Templates = []domain.PromptTemplate{
	{
		ID:   "default",
		Name: "Default Template",
		Body: "Create a social media post using these messages:\n```\n{{messages}}\n```\n\n" +
			"Use a professional tone, include emojis, and add relevant hashtags.",
		Platform: domain.PlatformBoth,
	},
	{
		ID:   "twitter",
		Name: "Twitter Optimized",
		Body: "Create a Twitter post based on these messages:\n```\n{{messages}}\n```\n\n" +
			"KEEP IT UNDER 280 CHARACTERS (you can make threads if needed), use 2-3 relevant hashtags, and ensure it is engaging.",
		Platform: domain.PlatformTwitter,
	},
	{
		ID:   "telegram",
		Name: "Telegram Channel",
		Body: "Create a Telegram channel post from these messages:\n```\n{{messages}}\n```\n\n" +
			"Format it with proper paragraphs, use emojis, and add a strong call to action at the end.",
		Platform: domain.PlatformTelegram,
	},
}

// TemplateByID returns the template with the given id, or the default
// template when the id is unknown.
func TemplateByID(id string) domain.PromptTemplate {
	for _, t := range Templates {
		if t.ID == id {
			return t
		}
	}
	return Templates[0]
}

// Language is a target language for the generated prompt.
type Language struct {
	Code string
	Name string
}

// Languages the composer offers, in display order.
var Languages = []Language{
	{"en", "English"},
	{"ru", "Russian"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"zh", "Chinese"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"ar", "Arabic"},
	{"pt", "Portuguese"},
	{"it", "Italian"},
}

// LanguageName maps a code to its display name, defaulting to English.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return "English"
}
