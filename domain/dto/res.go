package dto

// Res is the envelope every handler answers with.
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}

type ResLogin struct {
	Token string `json:"token"`
}
