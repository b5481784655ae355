package domain

import "strings"

// Provider error codes as surfaced to the storefront
const (
	AuthUserNotFound        = "auth/user-not-found"
	AuthWrongPassword       = "auth/wrong-password"
	AuthInvalidEmail        = "auth/invalid-email"
	AuthUserDisabled        = "auth/user-disabled"
	AuthTooManyRequests     = "auth/too-many-requests"
	AuthEmailInUse          = "auth/email-already-in-use"
	AuthWeakPassword        = "auth/weak-password"
	AuthOperationNotAllowed = "auth/operation-not-allowed"
	AuthInvalidCredential   = "auth/invalid-credential"
	AuthTokenExpired        = "auth/user-token-expired"
)

const (
	MsgFillAllFields    = "Por favor, preencha todos os campos"
	MsgPasswordMismatch = "As senhas não coincidem"
	MsgPasswordTooShort = "A senha deve ter pelo menos 6 caracteres"
	MsgLoginFailed      = "Erro ao fazer login. Tente novamente"
	MsgRegisterFailed   = "Erro ao criar conta. Tente novamente"
	MsgResetFailed      = "Erro ao enviar email de recuperação. Tente novamente"
	MsgGoogleFailed     = "Não foi possível entrar com Google. Tente novamente."

	MinPasswordLength = 6
)

var loginMessages = map[string]string{
	AuthUserNotFound:    "Usuário não encontrado",
	AuthWrongPassword:   "Senha incorreta",
	AuthInvalidEmail:    "Email inválido",
	AuthUserDisabled:    "Conta desabilitada",
	AuthTooManyRequests: "Muitas tentativas. Tente novamente mais tarde",
}

var registerMessages = map[string]string{
	AuthEmailInUse:          "Este email já está em uso",
	AuthInvalidEmail:        "Email inválido",
	AuthWeakPassword:        "A senha é muito fraca",
	AuthOperationNotAllowed: "Registro não permitido",
}

var resetMessages = map[string]string{
	AuthUserNotFound:    "Usuário não encontrado",
	AuthInvalidEmail:    "Email inválido",
	AuthTooManyRequests: "Muitas tentativas. Tente novamente mais tarde",
}

func LoginErrorMessage(code string) string {
	return lookup(loginMessages, code, MsgLoginFailed)
}

func RegisterErrorMessage(code string) string {
	return lookup(registerMessages, code, MsgRegisterFailed)
}

func ResetErrorMessage(code string) string {
	return lookup(resetMessages, code, MsgResetFailed)
}

func lookup(table map[string]string, code, fallback string) string {
	if msg, ok := table[strings.TrimSpace(code)]; ok {
		return msg
	}
	return fallback
}
