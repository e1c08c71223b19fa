// Package registrar brings parachains onto a relay chain test network.
//
// A run reserves para ids until every configured id is taken, registers
// the genesis head and validation code of each para and optionally forces
// slot leases, either once or continuously while following new heads.
// Progress is recorded in a journal so an interrupted run can be resumed.
package registrar
