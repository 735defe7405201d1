// Package domain models the Met Office (UKMET) tropical cyclone guidance
// bulletin and the storm tracks derived from it.
//
// # Data Source
//
// The bulletin is a plain-text product relayed by NOAA at
// https://tgftp.nws.noaa.gov/data/raw/wt/wtnt82.egrr..txt. It is refreshed
// twice a day and lists every tropical cyclone the UKMET global model tracks,
// plus systems it forecasts to develop.
//
// # Bulletin Layout
//
// A storm block starts with a line whose first word is one of TROPICAL,
// STORM, DEPRESSION or HURRICANE, followed by the storm name:
//
//	TROPICAL STORM ANNA        ANALYSED POSITION : 25.0N  80.0W
//	ATCF IDENTIFIER          : AL012021
//
//	   LEAD                  CENTRAL     MAXIMUM WIND
//	   VERIFYING TIME        POSITION    PRESSURE (MB)  SPEED (KNOTS)
//	   --------------        --------    -------------  -------------
//	1200UTC 22.05.2021   0   25.0N  80.0W     1005           45
//	0000UTC 23.05.2021  12   26.1N  79.2W     1003           48
//	1200UTC 23.05.2021  24       POST-TROPICAL
//
// Systems forecast to develop are announced as "NEW TROPICAL CYCLONE" and
// carry no name; they are named NEW_1, NEW_2, ... in order of appearance.
// The block sequence ends at the "THIS IS ..." footer.
//
// Data rows map positionally onto the seven [Field] columns. Two column
// misalignments are corrected while scanning:
//
//	POST-TROPICAL / CEASED in the latitude column: the storm has dissipated.
//	  The marker is dropped and the lead time appended from the same row is
//	  popped, so the row contributes only its verifying time and date.
//	TRACKING in the longitude column (from "CEASED TRACKING"): dropped.
//
// # Units
//
// Positions are degrees with a trailing hemisphere letter ("25.0N", "80.0W").
// Conversion assumes the Northern and Western hemispheres, which holds for the
// Atlantic and East Pacific basins this product covers. Pressure is in hPa,
// wind in knots, lead time in hours from the analysis time.
package domain
