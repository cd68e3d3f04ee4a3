package dialogue

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
)

// Messages holds every fixed reply of the guided flow.
type Messages struct {
	Menu       string
	AskName    string
	AskProject string
	Meeting    string
	Support    string
	BookCall   string
	Declined   string
}

func NewMessages(business model.BusinessConfig) Messages {
	return Messages{
		Menu: fmt.Sprintf(`👋 Hello! Welcome to *%s*, your digital partner.

How can we help you code your next success?

1️⃣ Know our services
2️⃣ Request a quote
3️⃣ Book a call
4️⃣ Ask a custom question
5️⃣ Support for ongoing project

Type a number or just ask your question!`, business.Name),
		AskName:    "Great! What's your name?",
		AskProject: "Got it! Can you describe your project briefly?",
		Meeting:    "You can book a call 👉 " + business.BookingURL,
		Support:    "Sure! Please describe your issue and we'll connect you with a tech specialist.",
		BookCall:   "Awesome! Schedule a call 👉 " + business.BookingURL,
		Declined:   "No problem. Type 'menu' to explore more options.",
	}
}

func (m Messages) AskEmail(name string) string {
	return fmt.Sprintf("Thanks %s! What's your email?", titleCase(name))
}

func (m Messages) OfferCall(name string) string {
	return fmt.Sprintf("Thanks %s! We'll contact you soon. Want to book a call too? (yes/no)", titleCase(name))
}

// titleCase upper-cases the first letter of each word and lowers the rest.
// A Caser keeps state, so one is created per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}
