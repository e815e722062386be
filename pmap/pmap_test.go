package pmap

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitFromFile(t *testing.T) {
	Convey("Given a parameter file with mixed valid and invalid lines", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "main.prm")
		contents := "alpha = 0.5\n  beta =0.9\nnot a pair\ngamma= 0.2 \n"
		So(os.WriteFile(path, []byte(contents), 0o644), ShouldBeNil)

		m, err := InitFromFile(path)
		So(err, ShouldBeNil)

		Convey("It keeps only key=value lines, trimming the key and keeping the value verbatim", func() {
			So(m.Len(), ShouldEqual, 3)

			v, ok := m.Find("alpha")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, " 0.5")

			v, ok = m.Find("beta")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "0.9")

			_, ok = m.Find("not a pair")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSaveRoundTrip(t *testing.T) {
	Convey("Given a map with several pairs", t, func() {
		m := New()
		m.Add("util", "radial")
		m.AddInt("maxit", 500)
		m.AddFloat("tol", 0.001)

		dir := t.TempDir()
		path := filepath.Join(dir, "out.prm")
		So(m.Save(path), ShouldBeNil)

		Convey("Reloading it reproduces the same pairs in order", func() {
			reloaded, err := InitFromFile(path)
			So(err, ShouldBeNil)
			So(reloaded.Len(), ShouldEqual, 3)
			So(reloaded.At(0).Key, ShouldEqual, "util")
			So(reloaded.At(1).Value, ShouldEqual, "500")

			tol, ok, err := reloaded.FindFloat("tol")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(tol, ShouldEqual, 0.001)
		})
	})
}

func TestFindTypedMissingKey(t *testing.T) {
	Convey("Given an empty map", t, func() {
		m := New()

		Convey("FindFloat and FindInt report absence without error", func() {
			_, ok, err := m.FindFloat("missing")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)

			_, ok, err = m.FindInt("missing")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
		})
	})
}
