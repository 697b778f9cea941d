package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/glossahub/glossahub-backend/internal/forms"
	"github.com/glossahub/glossahub-backend/internal/services"
)

// Subject presets selectable via the ?t= query parameter.
var contactSubjects = map[string]string{
	"lang":    "New language request",
	"reg":     "Registration problems",
	"hosting": "Commercial hosting",
	"account": "Suspicious account activity",
}

// ContactPage returns the contact form with initial values. Name and email
// are prefilled for signed-in users.
func ContactPage(w http.ResponseWriter, r *http.Request) {
	initial := forms.ContactForm{
		Subject: contactSubjects[r.URL.Query().Get("t")],
	}
	if user, _ := currentUser(r); user != nil {
		initial.Name = user.FullName
		initial.Email = user.Email
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"initial": initial,
	})
}

// Contact relays the contact form to the site admins. The rate limit is
// checked before validation so a flooding client gets refused without any
// feedback on its payload.
func Contact(w http.ResponseWriter, r *http.Request) {
	var form forms.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !checkMailRateLimit(w, r) {
		return
	}

	if errs := form.Validate(); !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: errs})
		return
	}

	body := fmt.Sprintf("Message from %s <%s>:\n\n%s\n", form.Name, form.Email, form.Message)
	if err := services.MailAdminsContact(cfg.EmailSubjectPrefix, form.Subject, body, cfg.AdminEmails, form.Email); err != nil {
		log.Printf("ERROR: failed to relay contact form: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: "Could not send message to administrator.",
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Your message has been sent to the administrators.",
		Redirect: "/",
	})
}

// HostingPage returns the hosting request form, prefilled from the account.
// The form only exists when hosting offers are turned on.
func HostingPage(w http.ResponseWriter, r *http.Request) {
	if !cfg.OfferHosting {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: "/"})
		return
	}
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"initial": forms.HostingForm{Name: user.FullName, Email: user.Email},
	})
}

// Hosting relays a commercial hosting request to the site admins. The relay
// is the same as the contact form, enriched with account data, and shares
// the mail rate limit.
func Hosting(w http.ResponseWriter, r *http.Request) {
	if !cfg.OfferHosting {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Redirect: "/"})
		return
	}
	user, _, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var form forms.HostingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !checkMailRateLimit(w, r) {
		return
	}

	if errs := form.Validate(); !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Errors: errs})
		return
	}

	body := fmt.Sprintf(
		"Hosting request for %s\n\nRequested by %s <%s> (username %s)\n\nWebsite: %s\nRepository: %s\nFile mask: %s\n\n%s\n",
		form.Project, form.Name, form.Email, user.Username,
		form.URL, form.Repo, form.Mask, form.Message,
	)
	if err := services.MailAdminsContact(cfg.EmailSubjectPrefix, "Hosting request for "+form.Project, body, cfg.AdminEmails, form.Email); err != nil {
		log.Printf("ERROR: failed to relay hosting request: %v", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: "Could not send message to administrator.",
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success:  true,
		Message:  "Your request has been sent to the administrators.",
		Redirect: "/",
	})
}

// checkMailRateLimit enforces the shared per-client mail quota. Writes the
// refusal and returns false when the quota is spent.
func checkMailRateLimit(w http.ResponseWriter, r *http.Request) bool {
	window := time.Duration(cfg.MailRateLimitWindow) * time.Second
	if services.CheckMailRateLimit(requestIP(r), cfg.MailRateLimitMax, window) {
		return true
	}
	writeJSON(w, http.StatusTooManyRequests, APIResponse{
		Success: false,
		Message: "Too many messages sent, please try again later.",
	})
	return false
}
