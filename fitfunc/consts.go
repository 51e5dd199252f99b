package fitfunc

const (
	// DegenerateEps is the threshold below which a denominator in an
	// initial guess computation is treated as zero variance.
	DegenerateEps = 1e-12

	// MinPositiveWidth is the smallest allowed Gaussian width and the
	// lower bound of other strictly positive parameters.
	MinPositiveWidth = 1e-12
)
