package model

// Entity is a draftable corps from a given competitive year.
//
// Fields:
//  ID                  – primary key identifier.
//  Name                – corps name.
//  HistoricalPlacement – final placement in Year, 1 being the champion.
//  PointCost           – cost charged against a season's point cap.
//  Year                – competitive year the placement refers to.
type Entity struct {
    ID                  string `json:"id"`                   // entities.id
    Name                string `json:"name"`                 // entities.name
    HistoricalPlacement int    `json:"historical_placement"` // entities.historical_placement
    PointCost           int    `json:"point_cost"`           // entities.point_cost
    Year                int    `json:"year"`                 // entities.year
}
