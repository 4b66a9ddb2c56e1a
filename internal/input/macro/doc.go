// Package macro records the key transitions delivered to an engine and
// plays them back.
//
// A Recorder is an engine hook: once registered it captures every host
// transition while recording is on. Recordings are saved as YAML sessions
// and replayed through a Player, either instantly or with their original
// timing, which makes key maps testable without a keyboard:
//
//	rec := macro.NewRecorder()
//	e.Hooks().RegisterNamed(rec, "macro")
//	rec.Start()
//	...
//	session := rec.Stop()
//	_ = macro.Save(session, "session.yaml")
//
//	session, _ = macro.Load("session.yaml")
//	_, _ = macro.NewPlayer(e).Play(ctx, session, 0)
package macro
