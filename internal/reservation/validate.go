package reservation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// format rules for well-known field names; applied only when filled in
var formats = map[string]string{
	"date": "datetime=2006-01-02",
	"time": "datetime=15:04",
}

func (c *Controller) validateLocked() map[string]string {
	errs := map[string]string{}
	value := func(f string) string { return strings.TrimSpace(c.fields[f]) }

	for _, f := range c.def.Required {
		if validate.Var(value(f), "required") != nil {
			errs[f] = "Ce champ est obligatoire"
		}
	}
	for _, group := range c.def.AnyOf {
		filled := false
		for _, f := range group {
			if value(f) != "" {
				filled = true
				break
			}
		}
		if filled {
			continue
		}
		for _, f := range group {
			if _, ok := errs[f]; !ok {
				errs[f] = "Renseignez au moins un moyen de contact"
			}
		}
	}
	if email := value(c.def.EmailField); email != "" && validate.Var(email, "email") != nil {
		errs[c.def.EmailField] = "Adresse email invalide"
	}
	for f, rule := range formats {
		if v := value(f); v != "" && validate.Var(v, rule) != nil {
			errs[f] = "Format invalide"
		}
	}
	return errs
}
