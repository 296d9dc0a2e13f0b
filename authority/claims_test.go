package authority_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"

	"reliefops/authority"
	"reliefops/bizerror"
)

func signClaimsToken(t *testing.T, key string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestParseClaimsToken(t *testing.T) {
	RegisterTestingT(t)

	t.Run("roles in a signed token should be normalized to claims", func(t *testing.T) {
		token := signClaimsToken(t, "reliefops-dev-claims-key", jwt.MapClaims{
			"roles": []string{"senior-director", "field-staff"}, "tenant": "hq", "iss": "idp",
		})

		claims, err := authority.ParseClaimsToken(token)
		Expect(err).To(BeNil())
		Expect(claims).To(Equal([]authority.ExternalClaim{
			{Role: "senior-director", Issuer: "idp", Tenant: "hq"},
			{Role: "field-staff", Issuer: "idp", Tenant: "hq"},
		}))
	})

	t.Run("token without roles should yield an empty claim set", func(t *testing.T) {
		token := signClaimsToken(t, "reliefops-dev-claims-key", jwt.MapClaims{"iss": "idp"})

		claims, err := authority.ParseClaimsToken(token)
		Expect(err).To(BeNil())
		Expect(claims).To(BeEmpty())
	})

	t.Run("badly signed token should be unauthenticated", func(t *testing.T) {
		token := signClaimsToken(t, "wrong-key", jwt.MapClaims{"roles": []string{"senior-director"}})

		claims, err := authority.ParseClaimsToken(token)
		Expect(claims).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})

	t.Run("garbage token should be unauthenticated", func(t *testing.T) {
		claims, err := authority.ParseClaimsToken("not-a-token")
		Expect(claims).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})
}

func TestClaimsFingerprint(t *testing.T) {
	RegisterTestingT(t)

	t.Run("fingerprint should be order insensitive", func(t *testing.T) {
		a := []authority.ExternalClaim{{Role: "r1", Issuer: "i", Tenant: "t"}, {Role: "r2", Issuer: "i", Tenant: "t"}}
		b := []authority.ExternalClaim{{Role: "r2", Issuer: "i", Tenant: "t"}, {Role: "r1", Issuer: "i", Tenant: "t"}}
		Expect(authority.ClaimsFingerprint(a)).To(Equal(authority.ClaimsFingerprint(b)))
	})

	t.Run("empty claim set has an empty fingerprint", func(t *testing.T) {
		Expect(authority.ClaimsFingerprint(nil)).To(BeEmpty())
	})
}
