package vclock_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	relaxed "github.com/romdo/go-relaxed"
	"github.com/romdo/go-relaxed/vclock"
)

var _ relaxed.Scheduler = (*vclock.Clock)(nil)

var _ = Describe("Clock", func() {
	var (
		start time.Time
		clock *vclock.Clock
		fired []string
	)

	record := func(name string) func() {
		return func() {
			fired = append(fired, name)
		}
	}

	BeforeEach(func() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock = vclock.New(start)
		fired = nil
	})

	It("should start at the given time", func() {
		Expect(clock.Now()).To(Equal(start))
		Expect(clock.Pending()).To(Equal(0))
	})

	It("should run callbacks in time order", func() {
		_, err := clock.AfterFunc(300*time.Millisecond, record("c"))
		Expect(err).NotTo(HaveOccurred())
		_, err = clock.AfterFunc(100*time.Millisecond, record("a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = clock.AfterFunc(200*time.Millisecond, record("b"))
		Expect(err).NotTo(HaveOccurred())

		Expect(clock.Advance(time.Second)).To(Equal(3))
		Expect(fired).To(Equal([]string{"a", "b", "c"}))
		Expect(clock.Now()).To(Equal(start.Add(time.Second)))
	})

	It("should run same-time callbacks in scheduling order", func() {
		for _, name := range []string{"first", "second", "third"} {
			_, err := clock.AfterFunc(50*time.Millisecond, record(name))
			Expect(err).NotTo(HaveOccurred())
		}

		clock.Advance(50 * time.Millisecond)

		Expect(fired).To(Equal([]string{"first", "second", "third"}))
	})

	It("should not run callbacks that are not due yet", func() {
		_, err := clock.AfterFunc(100*time.Millisecond, record("a"))
		Expect(err).NotTo(HaveOccurred())

		Expect(clock.Advance(99 * time.Millisecond)).To(Equal(0))
		Expect(fired).To(BeEmpty())
		Expect(clock.Pending()).To(Equal(1))

		Expect(clock.Advance(time.Millisecond)).To(Equal(1))
		Expect(fired).To(Equal([]string{"a"}))
	})

	It("should set the current time to the due time while running", func() {
		var seen time.Time
		_, err := clock.AfterFunc(250*time.Millisecond, func() {
			seen = clock.Now()
		})
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(time.Second)

		Expect(seen).To(Equal(start.Add(250 * time.Millisecond)))
	})

	It("should run callbacks scheduled by callbacks", func() {
		_, err := clock.AfterFunc(100*time.Millisecond, func() {
			fired = append(fired, "outer")
			_, err := clock.AfterFunc(100*time.Millisecond, record("inner"))
			Expect(err).NotTo(HaveOccurred())
		})
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(200 * time.Millisecond)

		Expect(fired).To(Equal([]string{"outer", "inner"}))
	})

	It("should not run stopped callbacks", func() {
		t1, err := clock.AfterFunc(100*time.Millisecond, record("a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = clock.AfterFunc(200*time.Millisecond, record("b"))
		Expect(err).NotTo(HaveOccurred())

		Expect(t1.Stop()).To(BeTrue())
		Expect(t1.Stop()).To(BeFalse())
		Expect(clock.Pending()).To(Equal(1))

		clock.Advance(time.Second)

		Expect(fired).To(Equal([]string{"b"}))
	})

	It("should report false when stopping a timer that already ran", func() {
		t, err := clock.AfterFunc(10*time.Millisecond, record("a"))
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(10 * time.Millisecond)

		Expect(t.Stop()).To(BeFalse())
	})

	It("should allow a callback to stop a later one", func() {
		var later relaxed.Timer
		_, err := clock.AfterFunc(100*time.Millisecond, func() {
			fired = append(fired, "early")
			later.Stop()
		})
		Expect(err).NotTo(HaveOccurred())
		later, err = clock.AfterFunc(100*time.Millisecond, record("later"))
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(100 * time.Millisecond)

		Expect(fired).To(Equal([]string{"early"}))
	})

	It("should run everything with RunAll", func() {
		_, err := clock.AfterFunc(time.Hour, record("a"))
		Expect(err).NotTo(HaveOccurred())
		_, err = clock.AfterFunc(time.Minute, record("b"))
		Expect(err).NotTo(HaveOccurred())

		Expect(clock.RunAll()).To(Equal(2))
		Expect(fired).To(Equal([]string{"b", "a"}))
		Expect(clock.Now()).To(Equal(start.Add(time.Hour)))
	})

	It("should report the next due time", func() {
		_, ok := clock.Next()
		Expect(ok).To(BeFalse())

		_, err := clock.AfterFunc(time.Minute, record("a"))
		Expect(err).NotTo(HaveOccurred())

		next, ok := clock.Next()
		Expect(ok).To(BeTrue())
		Expect(next).To(Equal(start.Add(time.Minute)))
	})

	It("should treat negative delays as due now", func() {
		_, err := clock.AfterFunc(-time.Second, record("a"))
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(0)

		Expect(fired).To(Equal([]string{"a"}))
		Expect(clock.Now()).To(Equal(start))
	})

	It("should refuse to schedule in the past", func() {
		clock.Advance(time.Second)

		_, err := clock.At(start, record("a"))

		Expect(err).To(MatchError(vclock.ErrPast))
		Expect(clock.Pending()).To(Equal(0))
	})

	It("should not move backwards", func() {
		clock.Advance(time.Second)

		clock.AdvanceTo(start)

		Expect(clock.Now()).To(Equal(start.Add(time.Second)))
	})
})
