package system_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/c-bruce/rocketsim/internal/config"
	"github.com/c-bruce/rocketsim/internal/ephem"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/system"
)

var _ = Describe("FromScenario", func() {
	It("seeds the Earth and Moon about their barycentre", func() {
		s, err := system.FromScenario(config.GetPreset("earth-moon"))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Dt()).To(Equal(60.0))
		Expect(s.SaveInterval()).To(Equal(100))

		earth := s.Current.CelestialBodies["Earth"]
		moon := s.Current.CelestialBodies["Moon"]
		Expect(moon.Parent).To(Equal("Earth"))

		d := moon.Position().Sub(earth.Position()).Len()
		Expect(d).To(BeNumerically(">", 3.5e8))
		Expect(d).To(BeNumerically("<", 4.1e8))

		v := moon.Velocity().Sub(earth.Velocity()).Len()
		Expect(v).To(BeNumerically("~", 1020, 80))

		p := s.Current.Momentum().Len()
		Expect(p).To(BeNumerically("<", 1e-9*ephem.MoonMass*v))
		Expect(earth.State()[rigid.PsiDot]).To(BeNumerically("~", ephem.EarthSpin, 1e-15))
	})

	It("places vessels relative to their reference body", func() {
		sc := config.GetPreset("leo")
		sc.CelestialBodies[0].Position = []float64{1e3, 2e3, 3e3}
		sc.CelestialBodies[0].Velocity = []float64{1, 0, 0}

		s, err := system.FromScenario(sc)
		Expect(err).NotTo(HaveOccurred())

		capsule := s.Current.Vessels["Capsule"]
		r := ephem.EarthRadius + 400e3
		Expect(capsule.Position()[0]).To(BeNumerically("~", r+1e3, 1e-6))
		Expect(capsule.Position()[1]).To(BeNumerically("~", 2e3, 1e-9))
		Expect(capsule.Velocity()[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(capsule.Velocity()[1]).To(BeNumerically("~", math.Sqrt(3.986004418e14/r), 1e-6))
	})

	It("attaches guidance and runs the launch preset", func() {
		sc := config.GetPreset("launch")
		sc.EndTime = 2
		s, err := system.FromScenario(sc)
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Simulate(context.Background())
		Expect(err).NotTo(HaveOccurred())

		falcon := s.Current.Vessels["Falcon"]
		Expect(falcon.Stages).To(HaveLen(2))
		Expect(falcon.ActiveStage().PropellantMass).To(BeNumerically("<", 410900))
		Expect(falcon.Position().Len()).To(BeNumerically(">", ephem.EarthRadius+30))
	})

	It("rejects unknown schemes and invalid scenarios", func() {
		sc := config.GetPreset("leo")
		sc.Scheme = "leapfrog"
		_, err := system.FromScenario(sc)
		Expect(err).To(HaveOccurred())

		sc = config.GetPreset("leo")
		sc.Vessels[0].RelativeTo = "Mars"
		_, err = system.FromScenario(sc)
		Expect(err).To(MatchError(config.ErrInvalidScenario))
	})
})
