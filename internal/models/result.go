package models

const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// Result is the one envelope every outer surface answers with.
type Result struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(data any) Result {
	return Result{Status: ResultSuccess, Data: data}
}

func Failed(msg string) Result {
	return Result{Status: ResultFail, Message: msg}
}
