package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token claims for Pulsegram.
// It includes standard claims required by the JWT specification and the custom
// claims the server needs to identify and authorize an account.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the account identifier issued at registration or first OAuth sign-in.
	ID string `json:"id"`

	// Name is the display name shown alongside posts, comments, and presence entries.
	Name string `json:"name"`

	// Role controls access to the admin surface ("user" or "admin").
	Role string `json:"role"`
}
