package configpaths

var CandidatePaths = candidatePaths
