package models

// User is a user record stored at users/{uid}. The push token is nil until
// the client registers a device; token absence suppresses delivery.
type User struct {
	UID             string  `json:"uid"`
	Username        string  `json:"username"`
	Email           string  `json:"email,omitempty"`
	ProfileImageURL string  `json:"profileImageUrl,omitempty"`
	FCMToken        *string `json:"fcmToken,omitempty"`
}

// DisplayName returns the username, or a neutral fallback for records that
// never set one.
func (u *User) DisplayName() string {
	if u != nil && u.Username != "" {
		return u.Username
	}
	return "Someone"
}

// Token returns the registered push token, or "" when the user has no
// registered device.
func (u *User) Token() string {
	if u == nil || u.FCMToken == nil {
		return ""
	}
	return *u.FCMToken
}
