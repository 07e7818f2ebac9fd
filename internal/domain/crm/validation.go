package crm

import "github.com/bizconsole/backend/internal/domain/shared"

var (
	validateRequired = shared.RequireString
	validateEmail    = shared.CheckEmail
	validatePhone    = shared.CheckPhone
)
