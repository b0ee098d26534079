package resume

import (
	"regexp"
	"strings"
)

// NotFound marks a contact field that was not present in the résumé.
const NotFound = "not found"

var (
	emailRe    = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phoneRe    = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+/?`)
)

// Contact holds the contact details found in a résumé.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
}

// ExtractContact pulls the first email, phone number and LinkedIn profile URL
// out of text. Missing fields are set to NotFound.
func ExtractContact(text string) Contact {
	return Contact{
		Email:    firstMatch(emailRe, text),
		Phone:    firstMatch(phoneRe, text),
		LinkedIn: firstMatch(linkedInRe, text),
	}
}

func firstMatch(re *regexp.Regexp, text string) string {
	if m := strings.TrimSpace(re.FindString(text)); m != "" {
		return m
	}
	return NotFound
}
