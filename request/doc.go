// Package request sends BMC API calls, authenticating only when the BMC
// asks for it.
//
// A Request is built from an api.Target, an auth.Authenticator and a shared
// *httpclient.Client. Send issues the first attempt without credentials.
// If the BMC answers 401 and the authenticator works in auth.ModeToken, a
// bearer token is obtained and the request is sent once more. The second
// response is returned whatever its status.
//
//	req := request.New(target.Set("flash"), authenticator, client)
//	req.Post()
//	req.SetMultipart(request.NewMultipart().AddFile("file", "/tmp/rk1.img"))
//	resp, err := req.Send(ctx)
//
// Bodies are factories: every attempt opens a fresh reader, so the retried
// attempt carries the same payload as the first. A one-shot stream wrapped
// with OneShot fails with ErrBodyNotReplayable when a second attempt needs
// it.
package request
