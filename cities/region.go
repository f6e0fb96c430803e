package cities

import "strings"

// Region is a coarse world region used to group clocks.
type Region string

const (
	RegionAsia         Region = "Asia"
	RegionEurope       Region = "Europe"
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionOceania      Region = "Oceania"
	RegionMiddleEast   Region = "Middle East"
	RegionAfrica       Region = "Africa"
	RegionOther        Region = "Other"
)

// RegionOf maps an ISO-3166 alpha-2 country code to its region. Unknown
// codes map to RegionOther.
func RegionOf(iso2 string) Region {
	if region, ok := regionByISO2[strings.ToUpper(strings.TrimSpace(iso2))]; ok {
		return region
	}
	return RegionOther
}

var regionByISO2 = buildRegionTable(map[Region]string{
	RegionAsia:         "AF BD BN BT CN HK ID IN JP KG KH KP KR KZ LA LK MM MN MO MV MY NP PH PK SG TH TJ TL TM TW UZ VN",
	RegionEurope:       "AD AL AT AX BA BE BG BY CH CY CZ DE DK EE ES FI FO FR GB GG GI GR HR HU IE IM IS IT JE LI LT LU LV MC MD ME MK MT NL NO PL PT RO RS RU SE SI SJ SK SM TR UA VA XK",
	RegionNorthAmerica: "AG AI AW BB BL BM BQ BS BZ CA CR CU CW DM DO GD GL GP GT HN HT JM KN KY LC MF MQ MS MX NI PA PM PR SV SX TC TT US VC VG VI",
	RegionSouthAmerica: "AR BO BR CL CO EC FK GF GY PE PY SR UY VE",
	RegionOceania:      "AS AU CK FJ FM GU KI MH MP NC NF NR NU NZ PF PG PN PW SB TK TO TV UM VU WF WS",
	RegionMiddleEast:   "AE AM AZ BH GE IL IQ IR JO KW LB OM PS QA SA SY YE",
	RegionAfrica:       "AO BF BI BJ BW CD CF CG CI CM CV DJ DZ EG EH ER ET GA GH GM GN GQ GW KE KM LR LS LY MA MG ML MR MU MW MZ NA NE NG RE RW SC SD SH SL SN SO SS ST SZ TD TG TN TZ UG YT ZA ZM ZW",
})

func buildRegionTable(groups map[Region]string) map[string]Region {
	table := make(map[string]Region)
	for region, codes := range groups {
		for _, code := range strings.Fields(codes) {
			table[code] = region
		}
	}
	return table
}
