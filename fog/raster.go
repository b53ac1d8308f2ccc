package fog

// stepLine advances a Bresenham line stepper inside a width*width window
// in local coordinates, invoking plot for every pixel it lands on. The
// stepper stops when the dominant axis passes e (the line end, in the same
// local coordinates) or when the cursor leaves the window, and returns the
// cursor and error term so the caller can resume in the adjacent window
// without drift. A nil plot walks the geometry without touching pixels,
// which is how erase operations traverse tiles and blocks that do not
// exist.
//
// The dominant axis always increases; quadrant13 selects whether the
// secondary axis increments or decrements, covering all four octants
// relative to the dominant axis. dx0 and dy0 are the absolute deltas of
// the full line and never change across windows.
func stepLine(width, x, y, e, p, dx0, dy0 int, xAxis, quadrant13 bool, plot func(x, y int)) (int, int, int) {
	if xAxis {
		for x < width && y >= 0 && y < width && x <= e {
			if plot != nil {
				plot(x, y)
			}
			if p < 0 {
				p += 2 * dy0
			} else {
				if quadrant13 {
					y++
				} else {
					y--
				}
				p += 2 * (dy0 - dx0)
			}
			x++
		}
	} else {
		for y < width && x >= 0 && x < width && y <= e {
			if plot != nil {
				plot(x, y)
			}
			if p < 0 {
				p += 2 * dx0
			} else {
				if quadrant13 {
					x++
				} else {
					x--
				}
				p += 2 * (dx0 - dy0)
			}
			y++
		}
	}
	return x, y, p
}
