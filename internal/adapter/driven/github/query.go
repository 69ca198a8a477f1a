package github

// searchQuery fetches one page of PR search results with the latest commit's
// check rollup.
const searchQuery = `query($searchQuery: String!, $first: Int!, $after: String) {
	search(query: $searchQuery, type: ISSUE, first: $first, after: $after) {
		issueCount
		pageInfo {
			hasNextPage
			endCursor
		}
		nodes {
			... on PullRequest {
				number
				title
				url
				isDraft
				state
				mergeable
				reviewDecision
				isInMergeQueue
				author { login }
				headRefName
				createdAt
				updatedAt
				additions
				deletions
				repository {
					name
					owner { login }
				}
				mergeQueueEntry { position }
				reviews(states: APPROVED) { totalCount }
				commits(last: 1) {
					nodes {
						commit {
							statusCheckRollup {
								state
								contexts(first: 100) {
									totalCount
									nodes {
										__typename
										... on CheckRun {
											name
											status
											conclusion
											detailsUrl
										}
										... on StatusContext {
											context
											state
											targetUrl
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

const viewerQuery = `query { viewer { login } }`
