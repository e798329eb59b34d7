package earthengine

import (
	"github.com/croplens/api/internal/models"
	"github.com/croplens/api/internal/provider"
)

// Sentinel-2 surface reflectance bands used by the index expressions.
const (
	bandBlue    = "B2" // blue
	bandGreen   = "B3" // green
	bandRed     = "B4" // red
	bandRedEdge = "B5" // red edge
	bandNIR     = "B8" // near infrared
)

// Expression graphs are built as nested value nodes, the shape the compute
// endpoint accepts. Helper constructors below keep the call sites readable.

type node map[string]interface{}

func constant(v interface{}) node {
	return node{"constantValue": v}
}

func invoke(function string, args node) node {
	return node{
		"functionInvocationValue": node{
			"functionName": function,
			"arguments":    args,
		},
	}
}

// expressionBody wraps a root node into the envelope the compute endpoint
// expects.
func expressionBody(root node) node {
	return node{
		"expression": node{
			"result": "0",
			"values": node{"0": root},
		},
	}
}

// polygonNode builds a geometry constructor node from GeoJSON coordinates.
func polygonNode(geom *models.Geometry) node {
	return invoke("GeometryConstructors.Polygon", node{
		"coordinates": constant(geom.Coordinates),
	})
}

// filteredCollection builds the bounded, dated, cloud-filtered Sentinel-2
// collection for one analysis.
func filteredCollection(geom *models.Geometry, spec compositeSpec) node {
	coll := invoke("ImageCollection.load", node{
		"id": constant(collectionID),
	})

	coll = invoke("Collection.filter", node{
		"collection": coll,
		"filter": invoke("Filter.intersects", node{
			"leftField":  constant(".all"),
			"rightValue": polygonNode(geom),
		}),
	})

	coll = invoke("Collection.filter", node{
		"collection": coll,
		"filter": invoke("Filter.date", node{
			"start": constant(spec.Start),
			"end":   constant(spec.End),
		}),
	})

	coll = invoke("Collection.filter", node{
		"collection": coll,
		"filter": invoke("Filter.lessThan", node{
			"leftField":  constant(cloudProperty),
			"rightValue": constant(spec.MaxCloudPct),
		}),
	})

	return coll
}

// collectionSize counts the scenes that survive the filters.
func collectionSize(geom *models.Geometry, spec compositeSpec) node {
	return invoke("Collection.size", node{
		"collection": filteredCollection(geom, spec),
	})
}

// compositeImage mosaics the most recent matching scene into a single image.
// Mirrors the original behavior of analyzing the latest acquisition rather
// than a temporal median.
func compositeImage(geom *models.Geometry, spec compositeSpec) node {
	latest := invoke("Collection.limit", node{
		"collection": filteredCollection(geom, spec),
		"limit":      constant(1),
		"key":        constant("system:time_start"),
		"ascending":  constant(false),
	})
	return invoke("ImageCollection.mosaic", node{
		"collection": latest,
	})
}

// selectBand extracts a single named band.
func selectBand(img node, band string) node {
	return invoke("Image.select", node{
		"input":         img,
		"bandSelectors": constant([]string{band}),
	})
}

func imageAdd(a, b node) node      { return invoke("Image.add", node{"image1": a, "image2": b}) }
func imageSubtract(a, b node) node { return invoke("Image.subtract", node{"image1": a, "image2": b}) }
func imageMultiply(a, b node) node { return invoke("Image.multiply", node{"image1": a, "image2": b}) }
func imageDivide(a, b node) node   { return invoke("Image.divide", node{"image1": a, "image2": b}) }

func constImage(v float64) node {
	return invoke("Image.constant", node{"value": constant(v)})
}

// renameBand names the computed index band so reduction results key on the
// index name.
func renameBand(img node, name string) node {
	return invoke("Image.rename", node{
		"input": img,
		"names": constant([]string{name}),
	})
}

// normalizedDifference builds (a-b)/(a+b) over two bands.
func normalizedDifference(img node, bandA, bandB string) node {
	return invoke("Image.normalizedDifference", node{
		"input":     img,
		"bandNames": constant([]string{bandA, bandB}),
	})
}

// indexImage computes the requested spectral index band over the composite.
//
// NDVI, NDWI, and NDRE are two-band normalized differences. EVI is the
// three-band weighted expression 2.5*((NIR-RED)/(NIR+6*RED-7.5*BLUE+1)).
func indexImage(img node, index provider.Index) node {
	switch index {
	case provider.IndexNDVI:
		return renameBand(normalizedDifference(img, bandNIR, bandRed), string(index))
	case provider.IndexNDWI:
		return renameBand(normalizedDifference(img, bandGreen, bandNIR), string(index))
	case provider.IndexNDRE:
		return renameBand(normalizedDifference(img, bandNIR, bandRedEdge), string(index))
	case provider.IndexEVI:
		nir := selectBand(img, bandNIR)
		red := selectBand(img, bandRed)
		blue := selectBand(img, bandBlue)

		numerator := imageSubtract(nir, red)
		denominator := imageAdd(
			imageAdd(nir, imageMultiply(red, constImage(6))),
			imageSubtract(constImage(1), imageMultiply(blue, constImage(7.5))),
		)
		evi := imageMultiply(imageDivide(numerator, denominator), constImage(2.5))
		return renameBand(evi, string(index))
	default:
		return renameBand(normalizedDifference(img, bandNIR, bandRed), string(index))
	}
}

// meanReduction reduces an index band to its mean over the polygon.
func meanReduction(geom *models.Geometry, spec compositeSpec, index provider.Index) node {
	return invoke("Image.reduceRegion", node{
		"image":     indexImage(compositeImage(geom, spec), index),
		"reducer":   invoke("Reducer.mean", node{}),
		"geometry":  polygonNode(geom),
		"scale":     constant(scaleMeters),
		"maxPixels": constant(maxPixels),
	})
}

// histogramReduction reduces an index band to a fixed-bucket histogram over
// the polygon. Index values are bounded to [-1, 1] by construction.
func histogramReduction(geom *models.Geometry, spec compositeSpec, index provider.Index) node {
	return invoke("Image.reduceRegion", node{
		"image": indexImage(compositeImage(geom, spec), index),
		"reducer": invoke("Reducer.fixedHistogram", node{
			"min":   constant(histogramMin),
			"max":   constant(histogramMax),
			"steps": constant(histogramSteps),
		}),
		"geometry":  polygonNode(geom),
		"scale":     constant(scaleMeters),
		"maxPixels": constant(maxPixels),
	})
}
