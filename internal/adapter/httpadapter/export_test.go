package httpadapter

// SetUploadLimit lowers the multipart body limit so tests can exceed it cheaply.
func (a *API) SetUploadLimit(n int64) { a.uploadLimit = n }
