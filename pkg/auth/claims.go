package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/dispatchline/delivery-console/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a token.
type AccessTokenPayload struct {
	OperatorID string
	Role       enums.OperatorRole
	JTI        string
}

// AccessTokenClaims is the typed JWT carried by dashboard operators.
type AccessTokenClaims struct {
	OperatorID string             `json:"operator_id"`
	Role       enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
