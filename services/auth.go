package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pems_api_go/config"
	"pems_api_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tenantAccessAttribute = "custom:custom_user"
	superAdminAttribute   = "custom:custom_superadmin"
)

// UserProfile is the raw identity returned by the provider
type UserProfile struct {
	UserName   string
	Attributes map[string]string
}

// AuthenticatedUser is a profile resolved against one tenant: roles decoded
// from that tenant's access score, everything else tenant-independent.
type AuthenticatedUser struct {
	UserName     string            `json:"user_name"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Email        string            `json:"email"`
	TenantAccess map[string]string `json:"-"`
	Roles        []string          `json:"roles"`
	SuperAdmin   bool              `json:"super_admin"`
}

// IdentityProvider resolves a bearer access token to a user profile
type IdentityProvider interface {
	Authenticate(ctx context.Context, accessToken string) (*UserProfile, error)
}

// CognitoProvider implements IdentityProvider against AWS Cognito
type CognitoProvider struct {
	client *cognitoidentityprovider.Client
}

// NewCognitoProvider creates an identity provider backed by the configured
// Cognito user pool
func NewCognitoProvider(cfg *config.Config) (*CognitoProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &CognitoProvider{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
	}, nil
}

// Authenticate resolves the access token through Cognito GetUser. Signature
// verification is Cognito's job: a token it does not recognize comes back as
// an error here.
func (p *CognitoProvider) Authenticate(ctx context.Context, accessToken string) (*UserProfile, error) {
	out, err := p.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		log.Printf("[WARNING] identity provider rejected token: %v", err)
		return nil, models.NewAuth("Invalid JWT")
	}

	profile := &UserProfile{
		UserName:   aws.ToString(out.Username),
		Attributes: make(map[string]string, len(out.UserAttributes)),
	}
	for _, attr := range out.UserAttributes {
		profile.Attributes[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	return profile, nil
}

// CheckTokenExpiry rejects structurally invalid or expired tokens before the
// identity provider round trip. Claims are read unverified; the provider
// call remains the authority on signature validity.
func CheckTokenExpiry(accessToken string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return models.NewAuth("Invalid JWT")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return models.NewAuth("Token expired")
	}
	return nil
}

// ResolveUser binds a profile to a tenant, decoding that tenant's role set
// from the access attribute. A user with no entry for the tenant resolves
// with zero roles; permission checks reject them later.
func ResolveUser(profile *UserProfile, tenant string) *AuthenticatedUser {
	tenantAccess := ParseTenantAccessAttribute(profile.Attributes[tenantAccessAttribute])
	return &AuthenticatedUser{
		UserName:     profile.UserName,
		FirstName:    profile.Attributes["given_name"],
		LastName:     profile.Attributes["family_name"],
		Email:        profile.Attributes["email"],
		TenantAccess: tenantAccess,
		Roles:        DecodeUserAccess(tenantAccess[tenant]),
		SuperAdmin:   profile.Attributes[superAdminAttribute] != "",
	}
}
