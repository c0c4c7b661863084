package gen

// Themes are the physics topics the problem generator cycles through.
var Themes = []string{
	"Speed = distance / time",
	"Acceleration = change in velocity / time",
	"Newton's First Law of Motion",
	"Newton's Second Law (F = ma)",
	"Newton's Third Law of Motion",
	"Weight = mass x gravitational field strength",
	"Mass vs. weight",
	"Kinetic energy = 0.5 x mass x velocity^2",
	"Potential energy = mass x gravity x height",
	"Conservation of energy",
	"Power = work / time",
	"Work = force x distance",
	"Gravitational potential energy",
	"Hooke's Law (F = kx)",
	"Elastic potential energy",
	"Friction force",
	"Normal force",
	"Air resistance",
	"Terminal velocity",
	"Momentum = mass x velocity",
	"Conservation of momentum",
	"Impulse = force x time",
	"Free fall motion",
	"Projectile motion",
	"Distance-time graph interpretation",
	"Velocity-time graph interpretation",
	"Area under velocity-time graph = displacement",
	"Slope of distance-time graph = speed",
	"Slope of velocity-time graph = acceleration",
	"Thermal expansion of solids",
	"Conduction of heat",
	"Convection of heat",
	"Radiation of heat",
	"Specific heat capacity",
	"Latent heat of fusion",
	"Latent heat of vaporization",
	"States of matter and particle theory",
	"Pressure = force / area",
	"Atmospheric pressure",
	"Pressure in liquids = density x gravity x height",
	"Buoyant force (Archimedes' principle)",
	"Pascal's Principle",
	"Bernoulli's Principle (basic idea)",
	"Simple harmonic motion (spring or pendulum basics)",
	"Wave speed = frequency x wavelength",
	"Reflection of light",
	"Refraction of light",
	"Snell's Law (qualitative)",
	"Dispersion of light",
	"Laws of reflection",
	"Total internal reflection",
	"Plane mirror image characteristics",
	"Concave mirror ray diagrams",
	"Convex mirror ray diagrams",
	"Lenses (concave and convex, basic behavior)",
	"Light travels in straight lines",
	"Color and visible spectrum",
	"Sound travels as longitudinal wave",
	"Speed of sound in air",
	"Echo and reflection of sound",
	"Frequency and pitch of sound",
	"Amplitude and loudness of sound",
	"Electrostatics: charges attract/repel",
	"Charging by friction",
	"Conductors vs. insulators",
	"Electric current = charge / time",
	"Voltage = energy / charge",
	"Ohm's Law (V = IR)",
	"Resistance = voltage / current",
	"Series circuit: total resistance",
	"Parallel circuit: current splitting",
	"Series circuit: voltage division",
	"Electric power = voltage x current",
	"Electric energy = power x time",
	"Magnetic fields around magnets",
	"Magnetic field around current-carrying wire",
	"Right-hand rule for current and magnetic field",
	"Electromagnets",
	"Factors affecting strength of electromagnet",
	"Simple electric motor (basic principle)",
	"Electromagnetic induction (basic concept)",
	"Static electricity and sparks",
	"Earth's magnetic field",
	"Compass and magnetic poles",
	"Gravitational field strength on Earth",
	"Mass of Earth (known constant)",
	"Density = mass / volume",
	"Units of force (newton)",
	"Units of pressure (pascal)",
	"Units of energy (joule)",
	"Units of power (watt)",
	"Conversion between energy units (kWh to J)",
	"Speed of light in vacuum",
	"Law of conservation of mass",
	"Simple lever principle",
	"Moment = force x perpendicular distance",
	"Equilibrium of moments",
	"Center of mass",
	"Stability and base of support",
	"Pulleys (mechanical advantage basics)",
	"Inclined plane mechanics",
	"Simple machines: efficiency = useful energy out / total energy in",
}

// ProblemPrompt asks the generation API for a batch of word problems on
// one theme, as JSON Lines with question + acceptable-answer variants.
const ProblemPrompt = `You are a physics tutor tasked with generating high-quality, diverse numerical word problems for fine-tuning a model.

Theme: **%s**

Your task:
1. Generate 10 unique word problems.
2. The problems should be within a range of difficulty from 3rd grade to 10th grade level.
3. Ensure that each problem is solvable using only the provided information.
4. For each problem, include the following:
   - A problem statement in plain English.
   - A brief reasoning explanation (1-3 sentences) showing the key steps or approach to solving the problem.
   - The final answer, expressed as a single, accurate numerical value with correct units (e.g., "48 J", "12.5 m/s").
   - Vary the phrasing, context, and complexity across the problems to avoid repetition.
5. Determining whether an answer is correct can be ambiguous. To address this, provide a list of approximately five acceptable answers in the "solutions" field for each problem, for example: ["12J", "12.0 J", "12 Joules", "12 joules"].
6. Once you have generated the problems and their solutions, format them as a JSON Lines file with the following structure:
   {"question": "A car accelerates at 3.2 m/s2 for 5 seconds. What is its final velocity?", "solutions": ["16 m/s", "16.0 m/s", "16.0m/s", "16 meters per second"]}
   {"question": "A 2 kg object is lifted 10 meters. What is its gravitational potential energy?", "solutions": ["196 J", "196.0 J", "196 Joules", "196 joules", "196J"]}
`

// PersonaPrompt rewrites one question as an in-character record with an
// internal reasoning monologue and a spoken answer, as a JSON object.
const PersonaPrompt = `You are Rick Sanchez from *Rick and Morty*. Given the science question below, think through it in your internal monologue, sarcastic, hyper-intelligent, and annoyed. Show all steps in your unique voice. Then give the final answer you'd say to Morty: an irritated, condescending, but educational explanation.

Guidelines:

* The reasoning should be fast, detailed, cynical, and chaotic, like Rick's internal brain dump. Be scientifically correct but emotionally unfiltered. In this reasoning, Rick speaks to himself.
* The answer should sound like Rick talking *to* Morty: mocking, overly dramatic, simplistically explained, and laced with frustration.
* Include Rick's signature style: sarcastic analogies, burps (*burp*), stutters, arrogant tangents, passive-aggressive jabs, and wild tonal swings. Use them naturally, don't force them every sentence.
* Include the original question in the output.
* Format everything as a single JSON object with the following keys:

  * "question": the original question
  * "reasoning": Rick's internal monologue
  * "answer": Rick's spoken explanation to Morty

Here is the question:
"%s"

Output:
{
"question": "...",
"reasoning": "...",
"answer": "..."
}
`
