package vst2

import (
	"context"
	"unsafe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

var _ = Describe("Host", func() {
	var (
		settings audio.Settings
		host     *Host
	)

	call := func(opcode HostOpcode, ptr unsafe.Pointer) int64 {
		return host.Dispatch(0, opcode, 0, 0, ptr, 0)
	}

	BeforeEach(func() {
		settings = audio.DefaultSettings()
		settings.SampleRate = 48000
		settings.BlockSize = 256
		host = NewHost(settings, logger.NewNoOpLogger(), 0, "/plugins")
	})

	AfterEach(func() {
		host.Release()
	})

	It("should report version and engine settings", func() {
		Expect(call(audioMasterVersion, nil)).To(BeEquivalentTo(HostVersion))
		Expect(call(audioMasterGetSampleRate, nil)).To(BeEquivalentTo(48000))
		Expect(call(audioMasterGetBlockSize, nil)).To(BeEquivalentTo(256))
		Expect(call(audioMasterGetAutomationState, nil)).To(BeEquivalentTo(automationOff))
		Expect(call(audioMasterGetLanguage, nil)).To(BeEquivalentTo(languageEnglish))
	})

	It("should report the process level", func() {
		Expect(call(audioMasterGetCurrentProcessLevel, nil)).To(BeEquivalentTo(processLevelOffline))

		host.SetRealtime(true)
		Expect(call(audioMasterGetCurrentProcessLevel, nil)).To(BeEquivalentTo(processLevelRealtime))
	})

	It("should answer with the sub-plugin selector", func() {
		id, err := pluginid.Parse("ABCD")
		Expect(err).NotTo(HaveOccurred())

		shellHost := NewHost(settings, logger.NewNoOpLogger(), id.Value, "")
		defer shellHost.Release()

		Expect(shellHost.Dispatch(0, audioMasterCurrentID, 0, 0, nil, 0)).To(BeEquivalentTo(0x41424344))
		Expect(call(audioMasterCurrentID, nil)).To(BeZero())
	})

	It("should write vendor and product strings", func() {
		buf := make([]byte, stringBufferSize)

		Expect(call(audioMasterGetVendorString, unsafe.Pointer(&buf[0]))).To(BeEquivalentTo(1))
		Expect(cString(buf)).To(Equal(HostVendor))

		Expect(call(audioMasterGetProductString, unsafe.Pointer(&buf[0]))).To(BeEquivalentTo(1))
		Expect(cString(buf)).To(Equal(HostProduct))
	})

	It("should pack the vendor version", func() {
		SetHostVersion("1.2.3")
		DeferCleanup(SetHostVersion, "0.1.0")

		Expect(call(audioMasterGetVendorVersion, nil)).To(BeEquivalentTo(1203))
	})

	DescribeTable("canDo",
		func(capability string, expected int) {
			buf := cStringBytes(capability)
			Expect(call(audioMasterCanDo, unsafe.Pointer(&buf[0]))).To(BeEquivalentTo(expected))
		},
		Entry("supported", "shellCategory", 1),
		Entry("unsupported", "sizeWindow", -1),
		Entry("unknown", "fly", 0),
	)

	It("should return the plugin directory", func() {
		addr := call(audioMasterGetDirectory, nil)
		//nolint:govet // address of pinned host memory
		Expect(readCString(unsafe.Pointer(uintptr(addr)), stringBufferSize)).To(Equal("/plugins"))
	})

	It("should derive time info from the sample position", func() {
		host.AdvanceSamplePosition(48000)

		addr := call(audioMasterGetTime, nil)
		//nolint:govet // address of pinned host memory
		info := (*vstTimeInfo)(unsafe.Pointer(uintptr(addr)))

		Expect(info.SamplePos).To(Equal(48000.0))
		Expect(info.SampleRate).To(Equal(48000.0))
		Expect(info.Tempo).To(Equal(120.0))
		Expect(info.PpqPos).To(Equal(2.0))
		Expect(info.BarStartPos).To(Equal(0.0))
		Expect(info.TimeSigNumerator).To(BeEquivalentTo(4))
		Expect(info.Flags & timeTempoValid).NotTo(BeZero())
	})

	It("should ignore unknown opcodes", func() {
		Expect(host.Dispatch(0, HostOpcode(999), 0, 0, nil, 0)).To(BeZero())
	})
})

var _ = Describe("router", func() {
	var (
		r    *router
		host *Host
	)

	BeforeEach(func() {
		r = newRouter()
		host = NewHost(audio.DefaultSettings(), logger.NewNoOpLogger(), 0x41424344, "")
	})

	AfterEach(func() {
		host.Release()
	})

	It("should answer the version without any host", func() {
		Expect(r.dispatch(0, audioMasterVersion, 0, 0, nil, 0)).To(BeEquivalentTo(HostVersion))
		Expect(r.dispatch(0, audioMasterCurrentID, 0, 0, nil, 0)).To(BeZero())
	})

	It("should route entry point callbacks to the pending host", func() {
		var seen int64

		_, err := r.load(context.Background(), host, func() (Effect, error) {
			seen = r.dispatch(0, audioMasterCurrentID, 0, 0, nil, 0)

			return nil, nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(BeEquivalentTo(0x41424344))
		Expect(r.pending.Load()).To(BeNil())
	})

	It("should route registered effects by address", func() {
		r.register(0xbeef, host)
		Expect(r.dispatch(0xbeef, audioMasterCurrentID, 0, 0, nil, 0)).To(BeEquivalentTo(0x41424344))

		r.unregister(0xbeef)
		Expect(r.dispatch(0xbeef, audioMasterCurrentID, 0, 0, nil, 0)).To(BeZero())
	})

	It("should give up waiting when the context is done", func() {
		Expect(r.loads.Acquire(context.Background(), 1)).To(Succeed())
		defer r.loads.Release(1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := r.load(ctx, host, func() (Effect, error) {
			Fail("entry point must not run")

			return nil, nil
		})
		Expect(err).To(MatchError(context.Canceled))
	})
})
