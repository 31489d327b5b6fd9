package output

// OnlineUserInfo describes one user with an identified live connection.
type OnlineUserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
