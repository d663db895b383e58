package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/schema"
)

var _ = Describe("Writer", func() {
	var (
		homeDir string
		workDir string
		writer  *Writer
	)

	BeforeEach(func() {
		homeDir = GinkgoT().TempDir()
		workDir = GinkgoT().TempDir()

		unsetEnv("XDG_CONFIG_HOME")

		writer = NewWriterWithDirs(homeDir, workDir)
	})

	It("writes the defaults with the schema directive and private permissions", func() {
		path, err := writer.WriteGlobal(DefaultConfig(), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".config", "plughost", "config.toml")))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix(schema.SchemaDirective() + "\n"))
		Expect(string(data)).To(ContainSubstring("[audio]"))
		Expect(string(data)).To(ContainSubstring("sample_rate = 44100"))

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(ConfigFileMode)))
	})

	It("round-trips through the loader", func() {
		cfg := DefaultConfig()
		cfg.Audio.SampleRate = 22050
		cfg.Plugins.Chain = "mrs_gain;mrs_passthru"

		_, err := writer.WriteProject(cfg, false)
		Expect(err).NotTo(HaveOccurred())

		loaded, err := NewKoanfLoaderWithDirs(homeDir, workDir).Load(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Audio.SampleRate).To(Equal(22050.0))
		Expect(loaded.Plugins.Chain).To(Equal("mrs_gain;mrs_passthru"))
		Expect(loaded.Processing.InputDuration).To(Equal(cfg.Processing.InputDuration))
	})

	It("refuses to overwrite unless forced", func() {
		_, err := writer.WriteProject(DefaultConfig(), false)
		Expect(err).NotTo(HaveOccurred())

		_, err = writer.WriteProject(DefaultConfig(), false)
		Expect(errors.Is(err, ErrConfigExists)).To(BeTrue())

		_, err = writer.WriteProject(DefaultConfig(), true)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a nil config", func() {
		err := writer.WriteFile(filepath.Join(workDir, "x.toml"), nil)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
	})

	It("refuses to write an invalid config", func() {
		cfg := DefaultConfig()
		cfg.Audio.Channels = 99

		path := filepath.Join(workDir, "bad.toml")
		err := writer.WriteFile(path, cfg)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		Expect(path).NotTo(BeAnExistingFile())
	})

	It("leaves no temporary files behind", func() {
		path, err := writer.WriteProject(DefaultConfig(), false)
		Expect(err).NotTo(HaveOccurred())

		entries, err := os.ReadDir(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})
})

var _ = Describe("Marshal", func() {
	It("renders nested tables", func() {
		data, err := Marshal(DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("[crash_dump]"))
		Expect(string(data)).To(ContainSubstring("max_dumps = 10"))
	})

	It("rejects nil", func() {
		_, err := Marshal(nil)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
	})
})
