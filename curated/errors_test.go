// This file is part of GopherZX.
//
// GopherZX is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherZX is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherZX.  If not, see <https://www.gnu.org/licenses/>.

package curated_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gopherzx/curated"
	"github.com/jetsetilly/gopherzx/test"
)

const testError = "test error: %v"
const testErrorB = "test error B: %v"

func TestDuplicateNormalisation(t *testing.T) {
	// error message parts that repeat should be de-duplicated when formatted
	inner := curated.Errorf(testError, "rinsed")
	outer := curated.Errorf(testError, inner)
	test.ExpectEquality(t, outer.Error(), "test error: rinsed")
}

func TestIsAndHas(t *testing.T) {
	err := curated.Errorf(testError, "flibble")
	test.ExpectSuccess(t, curated.IsAny(err))
	test.ExpectSuccess(t, curated.Is(err, testError))
	test.ExpectFailure(t, curated.Is(err, testErrorB))

	// a wrapped error is not Is() the inner pattern but it Has() it
	wrapped := curated.Errorf(testErrorB, err)
	test.ExpectFailure(t, curated.Is(wrapped, testError))
	test.ExpectSuccess(t, curated.Has(wrapped, testError))
	test.ExpectSuccess(t, curated.Has(wrapped, testErrorB))
}

func TestPlainErrors(t *testing.T) {
	err := errors.New("plain")
	test.ExpectFailure(t, curated.IsAny(err))
	test.ExpectFailure(t, curated.Is(err, testError))
	test.ExpectFailure(t, curated.Has(err, testError))
	test.ExpectEquality(t, curated.Head(err), "plain")

	var nilErr error
	test.ExpectFailure(t, curated.IsAny(nilErr))
	test.ExpectFailure(t, curated.Is(nilErr, testError))
}

func TestHead(t *testing.T) {
	err := curated.Errorf(testError, "flibble")
	test.ExpectEquality(t, curated.Head(err), testError)
}
