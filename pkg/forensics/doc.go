// Package forensics provides the shared geometric and pixel-level
// primitives used by every analyzer and detector in this module: regions,
// region merging, grayscale conversion, convolution/Sobel/bilinear
// sampling, block extraction and statistics, confidence bucketing, and
// the closed analyzer/detector error taxonomy.
//
// Everything here is a pure function of its inputs. No analyzer mutates
// the image it is given, and no state is shared across calls.
package forensics
