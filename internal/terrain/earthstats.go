package terrain

// hypsometry is the fraction of a 5° latitude band covered by land in each
// elevation bin.
type hypsometry struct {
	lat  float64
	bins [binCount]float64
}

const binCount = 5

// binRanges are the elevation ranges in metres of the hypsometric bins.
var binRanges = [binCount][2]float64{
	{0, 200},
	{200, 500},
	{500, 1000},
	{1000, 2000},
	{2000, 6000},
}

var earthBands = []hypsometry{
	{-87.5, [binCount]float64{0.009136, 0.005815, 0.010033, 0.116746, 0.858269}},
	{-82.5, [binCount]float64{0.182381, 0.054400, 0.074232, 0.194747, 0.492565}},
	{-77.5, [binCount]float64{0.105328, 0.030922, 0.064255, 0.167538, 0.478696}},
	{-72.5, [binCount]float64{0.066211, 0.026735, 0.041187, 0.105193, 0.351210}},
	{-67.5, [binCount]float64{0.031472, 0.012559, 0.028720, 0.079115, 0.056712}},
	{-62.5, [binCount]float64{0.001042, 0.000928, 0.000742, 0.000542, 0.000014}},
	{-57.5, [binCount]float64{0.000577, 0.000235, 0.000088, 0.000001, 0.000000}},
	{-52.5, [binCount]float64{0.008500, 0.005344, 0.001909, 0.000576, 0.000029}},
	{-47.5, [binCount]float64{0.006720, 0.007734, 0.008397, 0.003197, 0.000090}},
	{-42.5, [binCount]float64{0.009831, 0.008563, 0.010758, 0.008184, 0.000046}},
	{-37.5, [binCount]float64{0.032157, 0.018558, 0.008091, 0.006136, 0.001342}},
	{-32.5, [binCount]float64{0.075449, 0.043259, 0.019907, 0.015779, 0.004317}},
	{-27.5, [binCount]float64{0.065395, 0.069657, 0.037809, 0.033558, 0.009961}},
	{-22.5, [binCount]float64{0.049050, 0.094212, 0.051427, 0.038900, 0.012486}},
	{-17.5, [binCount]float64{0.051153, 0.066741, 0.055849, 0.049413, 0.014746}},
	{-12.5, [binCount]float64{0.037755, 0.066506, 0.034395, 0.055945, 0.010383}},
	{-7.5, [binCount]float64{0.077269, 0.067036, 0.048390, 0.033348, 0.006208}},
	{-2.5, [binCount]float64{0.127284, 0.055370, 0.028120, 0.026203, 0.005908}},
	{2.5, [binCount]float64{0.069399, 0.066868, 0.054080, 0.019938, 0.003743}},
	{7.5, [binCount]float64{0.076775, 0.078565, 0.056015, 0.024192, 0.007546}},
	{12.5, [binCount]float64{0.051216, 0.114230, 0.051100, 0.014747, 0.004682}},
	{17.5, [binCount]float64{0.058799, 0.134731, 0.071279, 0.020531, 0.005816}},
	{22.5, [binCount]float64{0.081182, 0.126006, 0.095200, 0.038894, 0.009185}},
	{27.5, [binCount]float64{0.098845, 0.127138, 0.084591, 0.052514, 0.039378}},
	{32.5, [binCount]float64{0.111337, 0.061413, 0.077413, 0.073114, 0.098636}},
	{37.5, [binCount]float64{0.069925, 0.075435, 0.060837, 0.119961, 0.097831}},
	{42.5, [binCount]float64{0.089671, 0.112500, 0.090149, 0.138303, 0.040349}},
	{47.5, [binCount]float64{0.147069, 0.167387, 0.111808, 0.088747, 0.024053}},
	{52.5, [binCount]float64{0.195211, 0.187629, 0.134505, 0.064310, 0.011058}},
	{57.5, [binCount]float64{0.230437, 0.169657, 0.101665, 0.045804, 0.000871}},
	{62.5, [binCount]float64{0.280279, 0.231287, 0.104468, 0.072484, 0.011983}},
	{67.5, [binCount]float64{0.298780, 0.229438, 0.121484, 0.046157, 0.028845}},
	{72.5, [binCount]float64{0.201980, 0.057586, 0.020519, 0.019809, 0.057262}},
	{77.5, [binCount]float64{0.062937, 0.035822, 0.028418, 0.044103, 0.067972}},
	{82.5, [binCount]float64{0.023247, 0.030204, 0.042001, 0.038523, 0.002930}},
	{87.5, [binCount]float64{0, 0, 0, 0, 0}},
}

// LatitudeStats interpolates Earth's land fraction and hypsometric bins at lat.
func LatitudeStats(lat float64) (landFrac float64, bins [binCount]float64) {
	i := 0
	for i < len(earthBands)-1 && earthBands[i+1].lat < lat {
		i++
	}
	p1 := earthBands[i]
	p2 := earthBands[min(i+1, len(earthBands)-1)]

	t := 0.0
	if p2.lat != p1.lat {
		t = (lat - p1.lat) / (p2.lat - p1.lat)
	}
	t = max(0, min(1, t))

	for b := range bins {
		bins[b] = p1.bins[b]*(1-t) + p2.bins[b]*t
		landFrac += bins[b]
	}
	return landFrac, bins
}
