package models

type IssueTokensReq struct {
	Identity string `json:"identity"`
}

type TokenPairRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RotateTokensReq struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutReq struct {
	Identity string `json:"identity"`
}
