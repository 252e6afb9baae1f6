package annotate

// Sentiment lexicon. Integer weights in [-3, 3]; the comparative score is
// the weight sum divided by the token count.
var lexicon = map[string]float64{
	"amazing":     3,
	"awesome":     3,
	"excellent":   3,
	"fantastic":   3,
	"love":        3,
	"wonderful":   3,
	"perfect":     3,
	"brilliant":   3,
	"great":       2,
	"happy":       2,
	"thanks":      2,
	"thank":       2,
	"glad":        2,
	"helpful":     2,
	"enjoy":       2,
	"like":        1,
	"good":        1,
	"nice":        1,
	"fine":        1,
	"cool":        1,
	"yes":         1,
	"ok":          1,
	"okay":        1,
	"interesting": 1,

	"bad":        -1,
	"no":         -1,
	"meh":        -1,
	"slow":       -1,
	"confusing":  -1,
	"boring":     -1,
	"sad":        -2,
	"angry":      -2,
	"annoying":   -2,
	"broken":     -2,
	"wrong":      -2,
	"problem":    -2,
	"useless":    -2,
	"hate":       -3,
	"terrible":   -3,
	"horrible":   -3,
	"awful":      -3,
	"disgusting": -3,
	"worst":      -3,
}
