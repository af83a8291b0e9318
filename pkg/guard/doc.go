// Package guard provides the submission guard that keeps a checkout from
// being sent twice.
//
// Memory suits a single process. Redis uses SET NX with an expiry and a
// per-acquisition token, so one instance never releases a lock it lost to
// expiry and another holder picked up.
package guard
