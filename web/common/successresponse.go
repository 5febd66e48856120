package common

// SuccessResponse is the envelope for single-object replies. Recognition
// outcomes are the exception: they go out unwrapped because their shape
// is the attendance terminal's contract.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}
