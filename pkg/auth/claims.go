package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
	Role     enums.StaffRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	BranchID uuid.UUID       `json:"branch_id"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
