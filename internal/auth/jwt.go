package auth

import (
	"fmt"

	"github.com/fieldmed/fieldsales-api/internal/config"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims issued by the identity service
type Claims struct {
	jwt.RegisteredClaims
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ManagedBy *string `json:"managed_by,omitempty"`
	Line      *string `json:"line,omitempty"`
	AreaID    *string `json:"area_id,omitempty"`
}

// JWTValidator validates HS256 tokens issued by the identity service
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken validates a token and builds the actor context from its claims.
// Legacy role aliases in old tokens are normalized before validation.
func (v *JWTValidator) ValidateToken(tokenString string) (*ActorContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	role := domain.NormalizeLegacyRole(domain.Role(claims.Role))
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role in token: %s", claims.Role)
	}

	actor := &ActorContext{
		UserID: userID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   role,
	}

	if claims.ManagedBy != nil {
		if managerID, err := uuid.Parse(*claims.ManagedBy); err == nil {
			actor.ManagedBy = &managerID
		}
	}
	if claims.Line != nil {
		line := domain.ProductLine(*claims.Line)
		if line.IsValid() {
			actor.Line = &line
		}
	}
	if claims.AreaID != nil && *claims.AreaID != "" {
		actor.AreaID = claims.AreaID
	}

	return actor, nil
}
