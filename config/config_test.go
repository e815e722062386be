package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFromYamlOverridesDefaults(t *testing.T) {
	Convey("Given a YAML file overriding only a subset of fields", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "driver.yaml")
		err := os.WriteFile(path, []byte("workers: 7\nlog_level: debug\n"), 0o644)
		So(err, ShouldBeNil)

		d, err := FromYaml(path)
		So(err, ShouldBeNil)

		Convey("Named fields are overridden", func() {
			So(d.Workers, ShouldEqual, 7)
			So(d.LogLevel, ShouldEqual, "debug")
		})

		Convey("Unmentioned fields keep their defaults", func() {
			So(d.DataDir, ShouldEqual, "data")
			So(d.SaveCycle, ShouldEqual, 100)
		})
	})
}

func TestModelAndParamPaths(t *testing.T) {
	Convey("Given a driver config", t, func() {
		d := &Driver{DataDir: "data", TmpDir: "tmp"}

		Convey("ModelPath joins TmpDir with the model name", func() {
			So(d.ModelPath("mymodel"), ShouldEqual, filepath.Join("tmp", "mymodel"))
		})

		Convey("ParamPath joins DataDir with the file name", func() {
			So(d.ParamPath("pardep.prm"), ShouldEqual, filepath.Join("data", "pardep.prm"))
		})
	})
}
