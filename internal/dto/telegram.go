package dto

type RegistrationStatus string

const (
	RegistrationLinked        RegistrationStatus = "linked"
	RegistrationAlreadyLinked RegistrationStatus = "already_linked"
	RegistrationUnknownEmail  RegistrationStatus = "unknown_email"
)

type RegisterChatResult struct {
	Status   RegistrationStatus
	UserName string
}
