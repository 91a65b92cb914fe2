package greeting

// Message is the text every GET / returns.
const Message = "Hello from Flask in Kubernetes with Argo!"

// Response is the greeting payload. It has exactly one field so the JSON body
// is {"message": "..."} with no other keys.
type Response struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello from Flask in Kubernetes with Argo!"`
}

// Output wraps Response for huma.
type Output struct {
	Body Response
}
