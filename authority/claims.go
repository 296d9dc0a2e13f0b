package authority

import (
	"os"
	"sort"
	"strings"

	"reliefops/bizerror"

	"github.com/golang-jwt/jwt/v5"
)

// ExternalClaim is a role assertion from an identity provider. Claims are
// resolved per request and never persisted.
type ExternalClaim struct {
	Role   string `json:"role"`
	Issuer string `json:"issuer"`
	Tenant string `json:"tenant"`
}

type claimsTokenBody struct {
	Roles  []string `json:"roles"`
	Tenant string   `json:"tenant"`
	jwt.RegisteredClaims
}

func claimsSigningKey() []byte {
	key := os.Getenv("CLAIMS_SIGNING_KEY")
	if key == "" {
		key = "reliefops-dev-claims-key"
	}
	return []byte(key)
}

// ParseClaimsToken normalizes a signed identity-provider token into
// ExternalClaim tuples. An undecodable token is an unauthenticated caller,
// not an empty claim set.
func ParseClaimsToken(token string) ([]ExternalClaim, error) {
	body := claimsTokenBody{}
	parsed, err := jwt.ParseWithClaims(token, &body, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, bizerror.ErrUnauthenticated
		}
		return claimsSigningKey(), nil
	})
	if err != nil || !parsed.Valid {
		return nil, bizerror.ErrUnauthenticated
	}

	claims := make([]ExternalClaim, 0, len(body.Roles))
	for _, role := range body.Roles {
		claims = append(claims, ExternalClaim{Role: role, Issuer: body.Issuer, Tenant: body.Tenant})
	}
	return claims, nil
}

// ClaimsFingerprint builds a canonical key for a claim set, insensitive to
// claim ordering.
func ClaimsFingerprint(claims []ExternalClaim) string {
	parts := make([]string, 0, len(claims))
	for _, claim := range claims {
		parts = append(parts, claim.Issuer+"/"+claim.Tenant+"/"+claim.Role)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
