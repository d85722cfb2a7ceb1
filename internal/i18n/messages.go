// Package i18n holds the user-facing messages returned by the HTTP API.
//
// Spanish is the default language; English is served when the client
// prefers it via Accept-Language. Message keys are the Spanish texts.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	ConversationsFailed     = "Error al obtener las conversaciones."
	ConversationFailed      = "Error al obtener la conversación."
	ConversationNotFound    = "Conversación con ID %s no encontrada."
	ParticipantUpdateFailed = "Error al actualizar el participante."
	ParticipantRemoveFailed = "Error al eliminar el participante."
	UserConversationsFailed = "Error al obtener las conversaciones del usuario."
	UserNotFound            = "Usuario con ID %s no encontrado."
	UserFailed              = "Error al obtener el usuario."
	InvalidBody             = "Cuerpo de la solicitud inválido."
	InvalidAccess           = "El campo access debe ser ReadWrite o Read."
	ConfigIncomplete        = "Configuración de TalkJS incompleta para el entorno %s."
	UpstreamUnavailable     = "No se pudo contactar con TalkJS."
	RouteNotFound           = "Ruta no encontrada."
	MethodNotAllowed        = "Método no permitido."
	InternalError           = "Error interno del servidor."
)

var english = map[string]string{
	ConversationsFailed:     "Failed to fetch conversations.",
	ConversationFailed:      "Failed to fetch the conversation.",
	ConversationNotFound:    "Conversation with ID %s not found.",
	ParticipantUpdateFailed: "Failed to update the participant.",
	ParticipantRemoveFailed: "Failed to remove the participant.",
	UserConversationsFailed: "Failed to fetch the user's conversations.",
	UserNotFound:            "User with ID %s not found.",
	UserFailed:              "Failed to fetch the user.",
	InvalidBody:             "Invalid request body.",
	InvalidAccess:           "The access field must be ReadWrite or Read.",
	ConfigIncomplete:        "TalkJS configuration incomplete for environment %s.",
	UpstreamUnavailable:     "Could not reach TalkJS.",
	RouteNotFound:           "Route not found.",
	MethodNotAllowed:        "Method not allowed.",
	InternalError:           "Internal server error.",
}

var (
	supported = []language.Tag{language.Spanish, language.English}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, en := range english {
		_ = b.SetString(language.Spanish, key, key)
		_ = b.SetString(language.English, key, en)
	}
	return b
}

// Negotiate picks the best supported language for an Accept-Language
// header. Empty or unparseable headers yield Spanish.
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Spanish
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Spanish
	}
	return supported[idx]
}

// Sprintf formats key in the language negotiated from acceptLanguage.
func Sprintf(acceptLanguage, key string, args ...any) string {
	p := message.NewPrinter(Negotiate(acceptLanguage), message.Catalog(cat))
	return p.Sprintf(key, args...)
}
