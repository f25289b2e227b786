// internal/service/template_service.go
package service

import (
	"strings"

	"github.com/rishikeshydv/bulk-email-sender/internal/model"
)

// RenderTemplate substitutes the fixed placeholders {{email}}, {{firstName}}
// and {{name}} with the recipient's values. Replacement is literal; unknown
// {{...}} tokens pass through untouched.
func RenderTemplate(template string, r model.Recipient) string {
	display := r.DisplayName()

	result := template
	result = strings.ReplaceAll(result, "{{email}}", r.Email)
	result = strings.ReplaceAll(result, "{{firstName}}", display)
	result = strings.ReplaceAll(result, "{{name}}", display)
	return result
}
