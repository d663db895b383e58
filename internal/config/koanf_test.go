package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("KoanfLoader", func() {
	var (
		homeDir string
		workDir string
		loader  *KoanfLoader
	)

	writeFile := func(path, content string) {
		Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		homeDir = GinkgoT().TempDir()
		workDir = GinkgoT().TempDir()

		unsetEnv("XDG_CONFIG_HOME")

		for _, key := range []string{
			"PLUGHOST_AUDIO_SAMPLE_RATE",
			"PLUGHOST_AUDIO_BLOCK_SIZE",
			"PLUGHOST_AUDIO_CHANNELS",
			"PLUGHOST_PLUGINS_ALLOWED_DIRS",
			"PLUGHOST_LOGGING_LEVEL",
			"PLUGHOST_CRASH_DUMP_MAX_DUMPS",
		} {
			unsetEnv(key)
		}

		loader = NewKoanfLoaderWithDirs(homeDir, workDir)
	})

	Describe("paths", func() {
		It("puts the global config under the XDG config home", func() {
			Expect(loader.GlobalConfigPath()).To(Equal(
				filepath.Join(homeDir, ".config", "plughost", "config.toml"),
			))
		})

		It("lists project paths in priority order", func() {
			Expect(loader.ProjectConfigPaths()).To(Equal([]string{
				filepath.Join(workDir, ".plughost", "config.toml"),
				filepath.Join(workDir, "plughost.toml"),
			}))
		})

		It("reports which files exist", func() {
			Expect(loader.HasGlobalConfig()).To(BeFalse())
			Expect(loader.FindProjectConfigPath()).To(BeEmpty())

			writeFile(filepath.Join(workDir, "plughost.toml"), "")
			Expect(loader.FindProjectConfigPath()).To(Equal(filepath.Join(workDir, "plughost.toml")))
		})
	})

	Describe("Load", func() {
		It("returns defaults when nothing is configured", func() {
			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Version).To(Equal(1))
			Expect(cfg.Audio.SampleRate).To(Equal(44100.0))
			Expect(cfg.Audio.Channels).To(Equal(2))
			Expect(cfg.Audio.BlockSize).To(Equal(512))
			Expect(cfg.Audio.TimeSignature).To(Equal("4/4"))
			Expect(cfg.Processing.IsRealtimeEnabled()).To(BeFalse())
			Expect(cfg.Processing.IsTailEnabled()).To(BeTrue())
			Expect(cfg.Processing.InputDuration.ToDuration()).To(Equal(5 * time.Second))
			Expect(cfg.Logging.Level).To(Equal("info"))
			Expect(cfg.CrashDump.IsEnabled()).To(BeTrue())
			Expect(cfg.CrashDump.MaxDumps).To(Equal(DefaultMaxCrashDumps))
			Expect(cfg.CrashDump.MaxAge.ToDuration()).To(Equal(DefaultCrashDumpMaxAge))
		})

		It("reads the global config", func() {
			writeFile(loader.GlobalConfigPath(), `
[audio]
sample_rate = 48000
time_signature = "3/4"

[processing]
input_duration = "250ms"
`)

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Audio.SampleRate).To(Equal(48000.0))
			Expect(cfg.Audio.TimeSignature).To(Equal("3/4"))
			Expect(cfg.Audio.Channels).To(Equal(2))
			Expect(cfg.Processing.InputDuration.ToDuration()).To(Equal(250 * time.Millisecond))
		})

		It("lets the project config override the global one", func() {
			writeFile(loader.GlobalConfigPath(), "[audio]\nchannels = 4\nblock_size = 64\n")
			writeFile(filepath.Join(workDir, "plughost.toml"), "[audio]\nchannels = 1\n")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Audio.Channels).To(Equal(1))
			Expect(cfg.Audio.BlockSize).To(Equal(64))
		})

		It("prefers .plughost/config.toml over plughost.toml", func() {
			writeFile(filepath.Join(workDir, ".plughost", "config.toml"), "[plugins]\nchain = \"mrs_gain\"\n")
			writeFile(filepath.Join(workDir, "plughost.toml"), "[plugins]\nchain = \"mrs_silence\"\n")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Plugins.Chain).To(Equal("mrs_gain"))
		})

		It("lets environment variables override files", func() {
			writeFile(filepath.Join(workDir, "plughost.toml"), "[audio]\nblock_size = 64\n")
			setEnv("PLUGHOST_AUDIO_BLOCK_SIZE", "256")
			setEnv("PLUGHOST_AUDIO_SAMPLE_RATE", "96000")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Audio.BlockSize).To(Equal(256))
			Expect(cfg.Audio.SampleRate).To(Equal(96000.0))
		})

		It("reads two word sections from the environment", func() {
			setEnv("PLUGHOST_CRASH_DUMP_MAX_DUMPS", "3")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.CrashDump.MaxDumps).To(Equal(3))
		})

		It("splits allowed directories from the environment", func() {
			setEnv("PLUGHOST_PLUGINS_ALLOWED_DIRS", "/a"+string(os.PathListSeparator)+"/b")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Plugins.AllowedDirs).To(Equal([]string{"/a", "/b"}))
		})

		It("lets flags override everything", func() {
			setEnv("PLUGHOST_AUDIO_BLOCK_SIZE", "256")

			cfg, err := loader.Load(map[string]any{
				"block-size": 128,
				"no-tail":    true,
				"realtime":   true,
				"duration":   "2s",
				"plugin":     "mrs_gain;mrs_passthru",
				"unknown":    "ignored",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Audio.BlockSize).To(Equal(128))
			Expect(cfg.Processing.IsTailEnabled()).To(BeFalse())
			Expect(cfg.Processing.IsRealtimeEnabled()).To(BeTrue())
			Expect(cfg.Processing.InputDuration.ToDuration()).To(Equal(2 * time.Second))
			Expect(cfg.Plugins.Chain).To(Equal("mrs_gain;mrs_passthru"))
		})

		It("rejects world-writable config files", func() {
			path := filepath.Join(workDir, "plughost.toml")
			writeFile(path, "[audio]\nchannels = 1\n")
			Expect(os.Chmod(path, 0o666)).To(Succeed())

			_, err := loader.Load(nil)
			Expect(errors.Is(err, ErrInvalidPermissions)).To(BeTrue())
		})

		It("fails on malformed TOML", func() {
			writeFile(loader.GlobalConfigPath(), "[audio\n")

			_, err := loader.Load(nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("global config"))
		})

		It("validates the merged result", func() {
			writeFile(filepath.Join(workDir, "plughost.toml"), "[audio]\nchannels = 12\n")

			_, err := loader.Load(nil)
			Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())

			cfg, err := loader.LoadWithoutValidation(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Audio.Channels).To(Equal(12))
		})

		It("rejects negative durations while decoding", func() {
			writeFile(loader.GlobalConfigPath(), "[processing]\ninput_duration = \"-1s\"\n")

			_, err := loader.LoadWithoutValidation(nil)
			Expect(err).To(HaveOccurred())
		})

		It("records the merged files in order", func() {
			writeFile(loader.GlobalConfigPath(), "[audio]\nchannels = 1\n")
			project := filepath.Join(workDir, ProjectConfigFileAlt)
			writeFile(project, "[audio]\nchannels = 2\n")

			_, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(loader.Files()).To(Equal([]string{loader.GlobalConfigPath(), project}))
		})

		It("reads bare numbers as seconds", func() {
			writeFile(loader.GlobalConfigPath(), "[processing]\ninput_duration = 3\n\n[crash_dump]\nmax_age = 1.5\n")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Processing.InputDuration.ToDuration()).To(Equal(3 * time.Second))
			Expect(cfg.CrashDump.MaxAge.ToDuration()).To(Equal(1500 * time.Millisecond))
		})

		It("splits a single allowed_dirs string", func() {
			sep := string(os.PathListSeparator)
			writeFile(loader.GlobalConfigPath(), "[plugins]\nallowed_dirs = \"/x"+sep+"/y\"\n")

			cfg, err := loader.Load(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Plugins.AllowedDirs).To(Equal([]string{"/x", "/y"}))
		})
	})

	Describe("envTransform", func() {
		DescribeTable("maps variable names to keys",
			func(name, want string) {
				key, _ := loader.envTransform(name, "x")
				Expect(key).To(Equal(want))
			},
			Entry("two words", "PLUGHOST_AUDIO_SAMPLE_RATE", "audio.sample_rate"),
			Entry("one word", "PLUGHOST_AUDIO_CHANNELS", "audio.channels"),
			Entry("top level", "PLUGHOST_VERSION", "version"),
			Entry("two word section", "PLUGHOST_CRASH_DUMP_MAX_DUMPS", "crash_dump.max_dumps"),
		)
	})
})
