package messages

import "strings"

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

func english() Catalog {
	return Catalog{
		Locale: "en",
		Errors: map[string]string{
			"required":     "This field is required",
			"email":        "Please enter a valid email address",
			"phone":        "Please enter a valid phone number",
			"url":          "Please enter a valid URL",
			"minLength":    "Please enter at least {min} characters",
			"maxLength":    "Please enter no more than {max} characters",
			"pattern":      "The format is not valid",
			"matchesField": "The fields do not match",
		},
		Success: map[string]string{
			"contact":     "Thank you! Your message has been sent.",
			"newsletter":  "Thank you for subscribing to our newsletter!",
			"appointment": "Your appointment request has been registered! We will contact you soon.",
		},
		SuccessTitle: "Sent successfully!",
		ErrorTitle:   "Error",
		GenericError: "An error occurred while sending the form",
		BusyLabel:    "Sending...",
		SubmitLabel:  "Send",
		CloseLabel:   "Close",
	}
}

func spanish() Catalog {
	return Catalog{
		Locale: "es",
		Errors: map[string]string{
			"required":     "Este campo es obligatorio",
			"email":        "Por favor, introduce un correo electrónico válido",
			"phone":        "Por favor, introduce un número de teléfono válido",
			"url":          "Por favor, introduce una URL válida",
			"minLength":    "Por favor, introduce al menos {min} caracteres",
			"maxLength":    "No puedes introducir más de {max} caracteres",
			"pattern":      "El formato no es válido",
			"matchesField": "Los campos no coinciden",
		},
		Success: map[string]string{
			"contact":     "¡Gracias! Tu mensaje ha sido enviado correctamente.",
			"newsletter":  "¡Gracias por suscribirte a nuestro boletín!",
			"appointment": "¡Tu solicitud de cita ha sido registrada! Te contactaremos pronto.",
		},
		SuccessTitle: "¡Enviado correctamente!",
		ErrorTitle:   "Error",
		GenericError: "Ha ocurrido un error al enviar el formulario",
		BusyLabel:    "Enviando...",
		SubmitLabel:  "Enviar",
		CloseLabel:   "Cerrar",
	}
}

// Builtin returns the bundled catalog for locale. Region suffixes are ignored
// ("es-ES" resolves to "es").
func Builtin(locale string) (Catalog, bool) {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	switch lang {
	case "en":
		return english(), true
	case "es":
		return spanish(), true
	default:
		return Catalog{}, false
	}
}

// Default returns the bundled catalog for DefaultLocale.
func Default() Catalog {
	return english()
}

// Resolve returns the bundled catalog for locale or the default catalog.
func Resolve(locale string) Catalog {
	if catalog, ok := Builtin(locale); ok {
		return catalog
	}
	return Default()
}
