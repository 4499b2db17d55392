package letter

import "github.com/disputekit/disputekit-server/internal/domain"

// Template holds the tone-specific phrasing of a letter.
type Template struct {
	Greeting string
	Opener   string
	Closing  string
	Request  string
}

var templates = map[domain.Tone]Template{
	domain.ToneFormal: {
		Greeting: "Dear Disputes Department,",
		Opener:   "I am writing to formally dispute",
		Closing:  "Thank you for your time and prompt attention to this matter.",
		Request:  "I respectfully request this charge be reversed and credited back to my account.",
	},
	domain.ToneAssertive: {
		Greeting: "To Whom It May Concern,",
		Opener:   "I dispute",
		Closing:  "I expect a resolution without delay.",
		Request:  "Reverse this charge immediately and confirm back to me.",
	},
	domain.TonePolite: {
		Greeting: "Hello Disputes Team,",
		Opener:   "I would like to dispute",
		Closing:  "I appreciate your assistance with this issue.",
		Request:  "Please reverse this charge and let me know if you need anything else.",
	},
}

// TemplateFor returns the template for a tone, defaulting to formal.
func TemplateFor(tone domain.Tone) Template {
	return templates[domain.ParseTone(string(tone))]
}
