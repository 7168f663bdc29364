package tables

// All timestamps are unix epoch milliseconds, TTL is unix epoch seconds
// and only consumed by the dynamodb time to live feature.

// AuthorizationCode represents the authorization_codes table
type AuthorizationCode struct {
	Code        string  `db:"code"          dynamodbav:"code"`
	ClientID    *string `db:"client_id"     dynamodbav:"clientId,omitempty"`
	RedirectURI *string `db:"redirect_uri"  dynamodbav:"redirectUri,omitempty"`
	VeluxUserID *string `db:"velux_user_id" dynamodbav:"veluxUserId,omitempty"`
	ExpiresAt   int64   `db:"expires_at"    dynamodbav:"expiresAt"`
	RedeemedAt  *int64  `db:"redeemed_at"   dynamodbav:"redeemedAt,omitempty"`
	TTL         int64   `db:"-"             dynamodbav:"ttl,omitempty"`
}

// AccessToken represents the access_tokens table
type AccessToken struct {
	Token       string `db:"token"         dynamodbav:"token"`
	ClientID    string `db:"client_id"     dynamodbav:"clientId"`
	VeluxUserID string `db:"velux_user_id" dynamodbav:"veluxUserId"`
	CreatedAt   int64  `db:"created_at"    dynamodbav:"createdAt"`
	ExpiresAt   int64  `db:"expires_at"    dynamodbav:"expiresAt"`
	TTL         int64  `db:"-"             dynamodbav:"ttl,omitempty"`
}

// UserRecord represents the users table
type UserRecord struct {
	UserID       string `db:"userid"        dynamodbav:"userid"`
	PasswordHash string `db:"password_hash" dynamodbav:"password_hash" json:"-"`
	HomeID       string `db:"home_id"       dynamodbav:"home_id"`
	Bridge       string `db:"bridge"        dynamodbav:"bridge"`
	AccessToken  string `db:"access_token"  dynamodbav:"access_token"  json:"-"`
	RefreshToken string `db:"refresh_token" dynamodbav:"refresh_token" json:"-"`
	CreatedAt    int64  `db:"created_at"    dynamodbav:"createdAt"`
}

// StringOrNil maps empty strings to NULL / absent attributes
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences an optional attribute
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
