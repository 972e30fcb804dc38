package response

import (
	"ideadrop/internal/domain/models"

	"github.com/google/uuid"
)

// Message is the uniform failure (and simple success) body.
type Message struct {
	Message string `json:"message"`
}

func Msg(message string) Message {
	return Message{Message: message}
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Auth is the success body of register/login/refresh. The refresh token
// travels only in the cookie, never in the body.
type Auth struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

func NewAuth(accessToken string, user models.User) Auth {
	return Auth{
		AccessToken: accessToken,
		User: User{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}
}
