package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two guards returning the same value can be merged with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// envAccess keeps environment reads inside internal/infra/config.
func envAccess(m dsl.Matcher) {
	m.Match(`os.Getenv($_)`, `os.LookupEnv($_)`).
		Where(!m.File().PkgPath.Matches(`/internal/infra/config$`)).
		Report(`read configuration through internal/infra/config instead of the environment`)
}

// outboundHTTP keeps Teller traffic on the executor, which owns timeouts and
// error classification.
func outboundHTTP(m dsl.Matcher) {
	m.Match(`http.Get($*_)`, `http.Post($*_)`, `http.DefaultClient`).
		Where(!m.File().PkgPath.Matches(`/internal/infra/teller$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`outbound HTTP belongs in internal/infra/teller; use the Executor`)
}
