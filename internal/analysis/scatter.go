package analysis

import (
	"strings"
)

// Scatter plots y against x on a width x height character grid, drawing the
// axes where they cross the visible range. Pairs with a non-finite member
// are skipped.
func Scatter(x, y []float64, width, height int) string {
	n := min(len(x), len(y))
	if n == 0 || width < 2 || height < 2 {
		return ""
	}

	first := true
	var minX, maxX, minY, maxY float64
	for i := 0; i < n; i++ {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		if first {
			minX, maxX, minY, maxY = x[i], x[i], y[i], y[i]
			first = false
			continue
		}
		minX, maxX = min(minX, x[i]), max(maxX, x[i])
		minY, maxY = min(minY, y[i]), max(maxY, y[i])
	}
	if first {
		return ""
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX, rangeY = maxX-minX, maxY-minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	toCol := func(v float64) int { return int((v - minX) / rangeX * float64(width-1)) }
	toRow := func(v float64) int { return height - 1 - int((v-minY)/rangeY*float64(height-1)) }

	for i := 0; i < n; i++ {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		grid[toRow(y[i])][toCol(x[i])] = '•'
	}

	if minX <= 0 && maxX >= 0 {
		col := toCol(0)
		for row := range grid {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := toRow(0)
		for col := range grid[row] {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
